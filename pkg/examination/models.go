package examination

import "time"

type ExaminationModel struct {
	ID            int       `gorm:"primaryKey;autoIncrement;column:id"`
	PatientCode   int       `gorm:"column:patient_code;index"`
	Date          time.Time `gorm:"column:date"`
	Height        float64   `gorm:"column:height"`
	Weight        float64   `gorm:"column:weight"`
	Temperature   float64   `gorm:"column:temperature"`
	Saturation    float64   `gorm:"column:saturation"`
	BloodPressure string    `gorm:"column:blood_pressure"`
	Note          string    `gorm:"column:note"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ExaminationModel) TableName() string {
	return "examinations"
}
