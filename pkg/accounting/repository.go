package accounting

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&BillModel{})
}

func (r *Repository) Save(ctx context.Context, b *BillModel) error {
	b.UpdatedAt = time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = b.UpdatedAt
	}
	if b.Status == "" {
		b.Status = StatusOpen
	}
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *Repository) FindByPatient(ctx context.Context, patientCode int) ([]BillModel, error) {
	var bills []BillModel
	result := r.db.WithContext(ctx).
		Where("patient_code = ?", patientCode).
		Order("date DESC").
		Find(&bills)
	return bills, result.Error
}

// FollowMerge repoints settled bills onto the surviving patient after
// a merge. Satisfies the merge event follower.
func (r *Repository) FollowMerge(ctx context.Context, fromCode, toCode int) error {
	return r.db.WithContext(ctx).Model(&BillModel{}).
		Where("patient_code = ?", fromCode).
		Updates(map[string]interface{}{
			"patient_code": toCode,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// HasPendingBills satisfies the merge validator's bill probe.
func (r *Repository) HasPendingBills(ctx context.Context, patientCode int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BillModel{}).
		Where("patient_code = ? AND status = ?", patientCode, StatusOpen).
		Count(&count).Error
	return count > 0, err
}
