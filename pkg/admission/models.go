package admission

import "time"

type AdmissionModel struct {
	ID            int        `gorm:"primaryKey;autoIncrement;column:id"`
	PatientCode   int        `gorm:"column:patient_code;index"`
	WardCode      string     `gorm:"column:ward_code"`
	AdmissionType string     `gorm:"column:admission_type"`
	AdmissionDate time.Time  `gorm:"column:admission_date"`
	DischargeDate *time.Time `gorm:"column:discharge_date"`
	DiagnosisIn   string     `gorm:"column:diagnosis_in"`
	DiagnosisOut  string     `gorm:"column:diagnosis_out"`
	Deleted       bool       `gorm:"column:deleted;index"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (AdmissionModel) TableName() string {
	return "admissions"
}
