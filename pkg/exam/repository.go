package exam

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrExamNotFound = errors.New("exam not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ExamModel{}, &ExamRowModel{})
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*ExamModel, error) {
	var e ExamModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) IsCodePresent(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ExamModel{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *Repository) List(ctx context.Context, description string) ([]ExamModel, error) {
	query := r.db.WithContext(ctx).Order("exam_type ASC, description ASC")
	if description != "" {
		query = query.Where("description LIKE ?", "%"+description+"%")
	}
	var exams []ExamModel
	result := query.Find(&exams)
	return exams, result.Error
}

func (r *Repository) ListByTypeDescription(ctx context.Context, typeDescription string) ([]ExamModel, error) {
	query := r.db.WithContext(ctx).Order("exam_type ASC, description ASC")
	if typeDescription != "" {
		query = query.Where("exam_type LIKE ?", "%"+typeDescription+"%")
	}
	var exams []ExamModel
	result := query.Find(&exams)
	return exams, result.Error
}

func (r *Repository) RowsForExam(ctx context.Context, code string) ([]ExamRowModel, error) {
	var rows []ExamRowModel
	result := r.db.WithContext(ctx).
		Where("exam_code = ?", code).
		Order("description ASC").
		Find(&rows)
	return rows, result.Error
}

// Create stores the exam with its row set in one transaction.
// Free-text exams carry no rows.
func (r *Repository) Create(ctx context.Context, exam *ExamModel, rows []string) error {
	exam.CreatedAt = time.Now().UTC()
	exam.UpdatedAt = exam.CreatedAt
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		if exam.Procedure == ProcedureFreeText {
			return nil
		}
		for _, description := range rows {
			row := ExamRowModel{ExamCode: exam.Code, Description: description}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update saves the exam and converges its stored row set on the given
// one: stale rows are deleted, missing rows inserted, and switching to
// a free-text procedure drops all rows. All in one transaction.
func (r *Repository) Update(ctx context.Context, exam *ExamModel, rows []string) error {
	previous, err := r.FindByCode(ctx, exam.Code)
	if err != nil {
		return err
	}

	exam.CreatedAt = previous.CreatedAt
	exam.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(exam).Error; err != nil {
			return err
		}

		var stored []ExamRowModel
		if err := tx.Where("exam_code = ?", exam.Code).Find(&stored).Error; err != nil {
			return err
		}

		if exam.Procedure == ProcedureFreeText && previous.Procedure != ProcedureFreeText {
			return tx.Where("exam_code = ?", exam.Code).Delete(&ExamRowModel{}).Error
		}

		wanted := make(map[string]struct{}, len(rows))
		for _, description := range rows {
			wanted[description] = struct{}{}
		}
		existing := make(map[string]struct{}, len(stored))
		for _, row := range stored {
			existing[row.Description] = struct{}{}
			if _, keep := wanted[row.Description]; !keep {
				if err := tx.Delete(&ExamRowModel{}, row.ID).Error; err != nil {
					return err
				}
			}
		}
		for _, description := range rows {
			if _, present := existing[description]; !present {
				row := ExamRowModel{ExamCode: exam.Code, Description: description}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Delete removes the exam together with its rows.
func (r *Repository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_code = ?", code).Delete(&ExamRowModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("code = ?", code).Delete(&ExamModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrExamNotFound
		}
		return nil
	})
}
