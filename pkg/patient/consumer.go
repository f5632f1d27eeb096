package patient

import (
	"context"

	"github.com/caretide-health/platform/pkg/common/kafka"
	"github.com/caretide-health/platform/pkg/common/logger"
	"github.com/caretide-health/platform/pkg/common/models"
)

// HistoryFollower repoints records that stay outside the merge
// transaction, driven by the published merge event. The validator
// guarantees no open bills or admissions exist at merge time, so
// followers only ever move settled history.
type HistoryFollower interface {
	FollowMerge(ctx context.Context, fromCode, toCode int) error
}

// NewMergeEventHandler builds the consumer handler that lets followers
// catch up with the surviving identity. Events of other types, or with
// malformed payloads, are acknowledged and skipped; a follower error is
// returned so the message is redelivered.
func NewMergeEventHandler(followers ...HistoryFollower) kafka.EventHandler {
	return func(ctx context.Context, event models.Event) error {
		if event.Type != EventTypePatientMerged {
			return nil
		}
		obsoleteCode, okObsolete := eventCode(event.Data["obsolete_code"])
		survivorCode, okSurvivor := eventCode(event.Data["survivor_code"])
		if !okObsolete || !okSurvivor {
			logger.Log.WithField("event_id", event.ID).Warn("merge event with malformed patient codes")
			return nil
		}
		for _, follower := range followers {
			if err := follower.FollowMerge(ctx, obsoleteCode, survivorCode); err != nil {
				return err
			}
		}
		return nil
	}
}

// eventCode tolerates the float64 that JSON decoding produces for
// numeric payload fields.
func eventCode(value interface{}) (int, bool) {
	switch code := value.(type) {
	case float64:
		return int(code), true
	case int:
		return code, true
	}
	return 0, false
}
