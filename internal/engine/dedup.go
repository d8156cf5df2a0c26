package engine

import (
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// FilterCandidates drops candidates the user must not see again: permanently
// dismissed ids, expired time-sensitive reminders, types suppressed for the
// day, and instance ids already shown today. ShownTypes holds singleton types
// that already surfaced plus any type the user dismissed for the day, so one
// membership check covers both. Order is preserved.
func FilterCandidates(cands []model.Notification, view *lifecycle.View, now time.Time) []model.Notification {
	out := cands[:0]
	for _, c := range cands {
		if view.Dismissed[c.ID] {
			continue
		}
		if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
			continue
		}
		if view.ShownTypes[c.Type] {
			continue
		}
		if view.ShownIDs[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}
