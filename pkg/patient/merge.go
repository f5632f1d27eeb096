package patient

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// HistoryStore repoints the patient reference on one category of
// dependent records. Implementations run against the supplied
// transaction handle so the merge stays all-or-nothing.
type HistoryStore interface {
	ReassignPatient(ctx context.Context, tx *gorm.DB, fromCode, toCode int) error
}

// Merger executes the patient-merge workflow: validate, reconcile,
// reassign dependent history, soft-delete the obsolete identity and
// dispatch pre-commit listeners, all inside a single transaction.
//
// Concurrent merges over overlapping patients are not coordinated
// here; the store's isolation (read-committed at minimum, row locking
// or serializable recommended) is the only safety net, and callers
// must serialize merges that touch the same patient.
type Merger struct {
	db        *gorm.DB
	validator *MergeValidator
	history   []HistoryStore
	listeners *ListenerRegistry
}

func NewMerger(db *gorm.DB, validator *MergeValidator, history []HistoryStore, listeners *ListenerRegistry) *Merger {
	if listeners == nil {
		listeners = NewListenerRegistry()
	}
	return &Merger{db: db, validator: validator, history: history, listeners: listeners}
}

func (m *Merger) Listeners() *ListenerRegistry {
	return m.listeners
}

// Merge folds obsolete into survivor. On success survivor carries the
// reconciled fields and obsolete is soft-deleted; on any failure after
// validation the store is left untouched.
func (m *Merger) Merge(ctx context.Context, survivor, obsolete *PatientModel) error {
	if err := m.validator.Validate(ctx, survivor, obsolete); err != nil {
		return err
	}

	now := time.Now().UTC()
	Reconcile(survivor, obsolete, now)

	event := MergedEvent{
		Survivor:   mapPatientModel(*survivor),
		Obsolete:   mapPatientModel(*obsolete),
		OccurredAt: now,
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, store := range m.history {
			if err := store.ReassignPatient(ctx, tx, obsolete.Code, survivor.Code); err != nil {
				return PersistenceError{cause: err}
			}
		}

		survivor.UpdatedAt = now
		if err := tx.Save(survivor).Error; err != nil {
			return PersistenceError{cause: err}
		}

		result := tx.Model(&PatientModel{}).Where("code = ?", obsolete.Code).Updates(map[string]interface{}{
			"deleted":    true,
			"updated_at": now,
		})
		if result.Error != nil {
			return PersistenceError{cause: result.Error}
		}

		if err := m.listeners.Dispatch(ctx, event); err != nil {
			return NotificationError{cause: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	obsolete.Deleted = true
	return nil
}
