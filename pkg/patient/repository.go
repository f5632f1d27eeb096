package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PatientModel{}, &MergeAudit{})
}

// FindByCode returns the active patient with the given code.
func (r *Repository) FindByCode(ctx context.Context, code int) (*PatientModel, error) {
	var p PatientModel
	err := r.db.WithContext(ctx).Where("code = ? AND deleted = ?", code, false).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByCodeIncludingDeleted keeps soft-deleted identities addressable
// for audit and history lookups.
func (r *Repository) FindByCodeIncludingDeleted(ctx context.Context, code int) (*PatientModel, error) {
	var p PatientModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context, nameFilter string, limit, offset int) ([]PatientModel, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Where("deleted = ?", false)
	if nameFilter != "" {
		pattern := "%" + nameFilter + "%"
		query = query.Where("first_name LIKE ? OR second_name LIKE ?", pattern, pattern)
	}
	var patients []PatientModel
	result := query.Order("second_name ASC, first_name ASC").Limit(limit).Offset(offset).Find(&patients)
	return patients, result.Error
}

func (r *Repository) Save(ctx context.Context, p *PatientModel) error {
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repository) MarkDeleted(ctx context.Context, code int) error {
	return r.db.WithContext(ctx).Model(&PatientModel{}).Where("code = ?", code).Updates(map[string]interface{}{
		"deleted":    true,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *Repository) SaveAudit(ctx context.Context, audit *MergeAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.New().String()
	}
	audit.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *Repository) RecentAudits(ctx context.Context, limit int) ([]MergeAudit, error) {
	if limit <= 0 {
		limit = 25
	}
	var audits []MergeAudit
	result := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&audits)
	return audits, result.Error
}
