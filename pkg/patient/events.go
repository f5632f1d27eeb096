package patient

import (
	"context"
	"time"

	"github.com/caretide-health/platform/pkg/common/kafka"
	"github.com/caretide-health/platform/pkg/common/models"
)

// EventTypePatientMerged tags merge notifications on the event bus.
const EventTypePatientMerged = "patient.merged"

// MergedEvent is the immutable notification produced exactly once per
// merge invocation, carrying snapshots of both identities as they
// stood when the merge was staged.
type MergedEvent struct {
	Survivor   models.Patient
	Obsolete   models.Patient
	OccurredAt time.Time
}

// MergeListener is a pre-commit hook: it runs inside the merge
// transaction, and its error vetoes the whole merge.
type MergeListener interface {
	PatientMerged(ctx context.Context, event MergedEvent) error
}

// ListenerRegistry dispatches merge events to listeners in
// registration order, stopping at the first failure.
type ListenerRegistry struct {
	listeners []MergeListener
}

func NewListenerRegistry() *ListenerRegistry {
	return &ListenerRegistry{}
}

func (r *ListenerRegistry) Register(listener MergeListener) {
	if listener != nil {
		r.listeners = append(r.listeners, listener)
	}
}

func (r *ListenerRegistry) Dispatch(ctx context.Context, event MergedEvent) error {
	for _, listener := range r.listeners {
		if err := listener.PatientMerged(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// KafkaMergeListener publishes the merge event to the configured
// topic. Publishing happens before commit, so consumers must treat
// the event as at-most-once per durable merge and confirm against
// the patient's final state.
type KafkaMergeListener struct {
	producer *kafka.Producer
}

func NewKafkaMergeListener(producer *kafka.Producer) *KafkaMergeListener {
	return &KafkaMergeListener{producer: producer}
}

func (l *KafkaMergeListener) PatientMerged(ctx context.Context, event MergedEvent) error {
	return l.producer.PublishEvent(ctx, EventTypePatientMerged, "patient-service", map[string]interface{}{
		"survivor_code": event.Survivor.Code,
		"obsolete_code": event.Obsolete.Code,
		"occurred_at":   event.OccurredAt,
	})
}
