package engine

import (
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// applyEscalation enforces the dismiss-streak policy per type: at the
// threshold the type is suppressed entirely for the suppression window, one
// dismissal short of it candidates are softened by one priority level. A
// streak whose last dismissal fell outside the window has lapsed and no
// longer applies; the next dismissal starts a fresh streak (lifecycle's
// BumpStreak) and accept deletes the record.
func (e *Engine) applyEscalation(cands []model.Notification, view *lifecycle.View, now time.Time) []model.Notification {
	out := cands[:0]
	for _, c := range cands {
		streak, ok := view.Streaks[c.Type]
		if !ok || !e.streakActive(streak, now) {
			out = append(out, c)
			continue
		}
		switch {
		case streak.Count >= e.rules.EscalationThreshold:
			continue
		case streak.Count == e.rules.EscalationThreshold-1:
			c.Priority = c.Priority.Demote()
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// streakActive reports whether the streak's last dismissal falls inside the
// suppression window. An unparseable date passes the candidate through rather
// than suppressing on corrupt state.
func (e *Engine) streakActive(streak model.DismissStreak, now time.Time) bool {
	last, err := time.Parse(model.DateKeyLayout, streak.LastDate)
	if err != nil {
		return false
	}
	windowEnd := last.AddDate(0, 0, e.rules.SuppressionWindowDays)
	return model.DateKey(now) <= model.DateKey(windowEnd)
}
