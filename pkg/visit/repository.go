package visit

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrVisitNotFound = errors.New("visit not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&VisitModel{})
}

func (r *Repository) FindByID(ctx context.Context, id int) (*VisitModel, error) {
	var v VisitModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) FindByPatient(ctx context.Context, patientCode int) ([]VisitModel, error) {
	var visits []VisitModel
	result := r.db.WithContext(ctx).
		Where("patient_code = ?", patientCode).
		Order("date DESC").
		Find(&visits)
	return visits, result.Error
}

func (r *Repository) Save(ctx context.Context, v *VisitModel) error {
	v.UpdatedAt = time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = v.UpdatedAt
	}
	return r.db.WithContext(ctx).Save(v).Error
}

// ReassignPatient repoints every visit of fromCode onto toCode using
// the caller's transaction handle.
func (r *Repository) ReassignPatient(ctx context.Context, tx *gorm.DB, fromCode, toCode int) error {
	return tx.WithContext(ctx).Model(&VisitModel{}).
		Where("patient_code = ?", fromCode).
		Updates(map[string]interface{}{
			"patient_code": toCode,
			"updated_at":   time.Now().UTC(),
		}).Error
}
