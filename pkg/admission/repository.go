package admission

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrAdmissionNotFound = errors.New("admission not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AdmissionModel{})
}

func (r *Repository) Save(ctx context.Context, a *AdmissionModel) error {
	a.UpdatedAt = time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *Repository) FindByPatient(ctx context.Context, patientCode int) ([]AdmissionModel, error) {
	var admissions []AdmissionModel
	result := r.db.WithContext(ctx).
		Where("patient_code = ? AND deleted = ?", patientCode, false).
		Order("admission_date DESC").
		Find(&admissions)
	return admissions, result.Error
}

// Discharge closes an open admission.
func (r *Repository) Discharge(ctx context.Context, id int, dischargeDate time.Time, diagnosisOut string) error {
	result := r.db.WithContext(ctx).Model(&AdmissionModel{}).
		Where("id = ? AND discharge_date IS NULL AND deleted = ?", id, false).
		Updates(map[string]interface{}{
			"discharge_date": dischargeDate,
			"diagnosis_out":  diagnosisOut,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// FollowMerge repoints past admissions onto the surviving patient
// after a merge. Satisfies the merge event follower.
func (r *Repository) FollowMerge(ctx context.Context, fromCode, toCode int) error {
	return r.db.WithContext(ctx).Model(&AdmissionModel{}).
		Where("patient_code = ?", fromCode).
		Updates(map[string]interface{}{
			"patient_code": toCode,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// HasOpenAdmission satisfies the merge validator's admission probe.
func (r *Repository) HasOpenAdmission(ctx context.Context, patientCode int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AdmissionModel{}).
		Where("patient_code = ? AND discharge_date IS NULL AND deleted = ?", patientCode, false).
		Count(&count).Error
	return count > 0, err
}
