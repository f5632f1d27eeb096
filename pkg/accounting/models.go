package accounting

import "time"

const (
	StatusOpen    = "O"
	StatusClosed  = "C"
	StatusDeleted = "D"
)

type BillModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement;column:id"`
	PatientCode int       `gorm:"column:patient_code;index"`
	PatientName string    `gorm:"column:patient_name"`
	Date        time.Time `gorm:"column:date"`
	Amount      float64   `gorm:"column:amount"`
	Balance     float64   `gorm:"column:balance"`
	Status      string    `gorm:"column:status;size:1;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (BillModel) TableName() string {
	return "bills"
}
