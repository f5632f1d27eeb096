package exam

import "time"

// Procedure kinds: 1 = single result from a fixed row set,
// 2 = one result per row, 3 = free-text result without rows.
const (
	ProcedureSingleResult = 1
	ProcedureMultiResult  = 2
	ProcedureFreeText     = 3
)

type ExamModel struct {
	Code          string    `gorm:"primaryKey;column:code"`
	Description   string    `gorm:"column:description"`
	ExamType      string    `gorm:"column:exam_type;index"`
	Procedure     int       `gorm:"column:procedure"`
	DefaultResult string    `gorm:"column:default_result"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ExamModel) TableName() string {
	return "exams"
}

type ExamRowModel struct {
	ID          int    `gorm:"primaryKey;autoIncrement;column:id"`
	ExamCode    string `gorm:"column:exam_code;index"`
	Description string `gorm:"column:description"`
}

func (ExamRowModel) TableName() string {
	return "exam_rows"
}
