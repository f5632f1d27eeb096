package examination

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrExaminationNotFound = errors.New("examination not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ExaminationModel{})
}

func (r *Repository) FindByID(ctx context.Context, id int) (*ExaminationModel, error) {
	var e ExaminationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExaminationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) FindByPatient(ctx context.Context, patientCode int) ([]ExaminationModel, error) {
	var examinations []ExaminationModel
	result := r.db.WithContext(ctx).
		Where("patient_code = ?", patientCode).
		Order("date DESC").
		Find(&examinations)
	return examinations, result.Error
}

func (r *Repository) Save(ctx context.Context, e *ExaminationModel) error {
	e.UpdatedAt = time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.UpdatedAt
	}
	return r.db.WithContext(ctx).Save(e).Error
}

// ReassignPatient repoints every examination of fromCode onto toCode
// using the caller's transaction handle.
func (r *Repository) ReassignPatient(ctx context.Context, tx *gorm.DB, fromCode, toCode int) error {
	return tx.WithContext(ctx).Model(&ExaminationModel{}).
		Where("patient_code = ?", fromCode).
		Updates(map[string]interface{}{
			"patient_code": toCode,
			"updated_at":   time.Now().UTC(),
		}).Error
}
