package visit

import "time"

type VisitModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement;column:id"`
	PatientCode int       `gorm:"column:patient_code;index"`
	Ward        string    `gorm:"column:ward"`
	Date        time.Time `gorm:"column:date"`
	Duration    int       `gorm:"column:duration"`
	Service     string    `gorm:"column:service"`
	Note        string    `gorm:"column:note"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (VisitModel) TableName() string {
	return "visits"
}
