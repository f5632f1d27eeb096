package patient

import (
	"time"

	"github.com/caretide-health/platform/pkg/common/models"
	"gorm.io/datatypes"
)

type PatientModel struct {
	Code           int               `gorm:"primaryKey;autoIncrement;column:code"`
	FirstName      string            `gorm:"column:first_name"`
	SecondName     string            `gorm:"column:second_name"`
	BirthDate      *time.Time        `gorm:"column:birth_date"`
	Age            int               `gorm:"column:age"`
	AgeType        string            `gorm:"column:age_type;size:3"`
	Sex            string            `gorm:"column:sex;size:1"`
	Address        string            `gorm:"column:address"`
	City           string            `gorm:"column:city"`
	NextOfKin      string            `gorm:"column:next_of_kin"`
	Telephone      string            `gorm:"column:telephone"`
	MotherName     string            `gorm:"column:mother_name"`
	Mother         string            `gorm:"column:mother;size:1"`
	FatherName     string            `gorm:"column:father_name"`
	Father         string            `gorm:"column:father;size:1"`
	BloodType      string            `gorm:"column:blood_type"`
	HasInsurance   string            `gorm:"column:has_insurance;size:1"`
	ParentTogether string            `gorm:"column:parent_together;size:1"`
	Note           string            `gorm:"column:note"`
	Deleted        bool              `gorm:"column:deleted;index"`
	Attributes     datatypes.JSONMap `gorm:"column:attributes"`
	CreatedAt      time.Time         `gorm:"column:created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

func (PatientModel) TableName() string {
	return "patients"
}

type MergeAudit struct {
	ID           string            `gorm:"primaryKey;column:id"`
	SurvivorCode int               `gorm:"column:survivor_code;index"`
	ObsoleteCode int               `gorm:"column:obsolete_code;index"`
	Outcome      string            `gorm:"column:outcome"` // committed, rolled_back, rejected
	Message      string            `gorm:"column:message"`
	Detail       datatypes.JSONMap `gorm:"column:detail"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
}

func (MergeAudit) TableName() string {
	return "patient_merge_audits"
}

func mapPatientModel(p PatientModel) models.Patient {
	return models.Patient{
		Code:           p.Code,
		FirstName:      p.FirstName,
		SecondName:     p.SecondName,
		BirthDate:      p.BirthDate,
		Age:            p.Age,
		AgeType:        p.AgeType,
		Sex:            p.Sex,
		Address:        p.Address,
		City:           p.City,
		NextOfKin:      p.NextOfKin,
		Telephone:      p.Telephone,
		MotherName:     p.MotherName,
		Mother:         p.Mother,
		FatherName:     p.FatherName,
		Father:         p.Father,
		BloodType:      p.BloodType,
		HasInsurance:   p.HasInsurance,
		ParentTogether: p.ParentTogether,
		Note:           p.Note,
		Deleted:        p.Deleted,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
