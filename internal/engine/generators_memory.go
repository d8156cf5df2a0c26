package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Generators in this file consume the behavioral-memory summary. All of them
// produce nothing when the memory collaborator was unavailable.

// genPatternDay suggests known weekly habits on their day, skipping pure
// daily-routine matches and habits already scheduled today.
func (e *Engine) genPatternDay(_ context.Context, s *Snapshot) []model.Notification {
	scheduledToday := map[string]bool{}
	for _, entry := range s.Today {
		scheduledToday[NormalizeText(entry.Text)] = true
	}

	seen := map[string]bool{}
	var out []model.Notification
	for _, p := range s.Patterns {
		if p.Weekday != s.Now.Weekday() {
			continue
		}
		normalized := NormalizeText(p.Activity)
		if normalized == "" || seen[normalized] || isDailyRoutine(normalized) || scheduledToday[normalized] {
			continue
		}
		seen[normalized] = true
		msg := fmt.Sprintf("You usually do %q on %ss.", p.Activity, p.Weekday)
		if p.Clock != "" {
			msg = fmt.Sprintf("You usually do %q on %ss around %s.", p.Activity, p.Weekday, p.Clock)
		}
		out = append(out, model.Notification{
			ID:       notifID(model.TypeMemorySuggestion, normalized, s.Now),
			Type:     model.TypeMemorySuggestion,
			Priority: model.PriorityLow,
			Title:    "Keep the streak",
			Message:  msg,
		})
	}
	return out
}

// genPeakHour suggests deep work during a remembered productivity peak, but
// only when no important schedule already occupies that hour.
func (e *Engine) genPeakHour(_ context.Context, s *Snapshot) []model.Notification {
	hour := s.Now.Hour()
	peak := false
	for _, h := range s.Memory.PeakHours {
		if h == hour {
			peak = true
			break
		}
	}
	if !peak {
		return nil
	}
	for _, entry := range s.Today {
		start, ok := entry.StartAt(s.Now)
		if ok && start.Hour() == hour && isImportant(entry.Text) {
			return nil
		}
	}
	return []model.Notification{{
		ID:       notifID(model.TypePeakHour, fmt.Sprintf("h%02d", hour), s.Now),
		Type:     model.TypePeakHour,
		Priority: model.PriorityMedium,
		Title:    "Peak focus hour",
		Message:  "This is usually one of your most productive hours. Good time for the hard thing on your list.",
	}}
}

// genImportantEvents reminds about remembered notable events: same-day at
// high priority, next-day at medium.
func (e *Engine) genImportantEvents(_ context.Context, s *Snapshot) []model.Notification {
	today := model.DateKey(s.Now)
	tomorrow := model.DateKey(s.Now.AddDate(0, 0, 1))

	var out []model.Notification
	for _, ev := range s.Memory.NotableEvents {
		if !ev.Important {
			continue
		}
		subject := NormalizeText(ev.Text)
		if subject == "" {
			continue
		}
		switch ev.Date {
		case today:
			out = append(out, model.Notification{
				ID:       notifID(model.TypeImportantEvent, subject, s.Now),
				Type:     model.TypeImportantEvent,
				Priority: model.PriorityHigh,
				Title:    "Today",
				Message:  fmt.Sprintf("Don't forget: %s is today.", ev.Text),
			})
		case tomorrow:
			out = append(out, model.Notification{
				ID:       notifID(model.TypeImportantEvent, subject, s.Now),
				Type:     model.TypeImportantEvent,
				Priority: model.PriorityMedium,
				Title:    "Tomorrow",
				Message:  fmt.Sprintf("Heads up: %s is tomorrow.", ev.Text),
			})
		}
	}
	return out
}

// genPreferredActivity suggests a remembered time-of-day activity. The id is
// constant per slot per day and the trigger only fires on hours divisible by
// the suggestion gap, which together rate-limit it to roughly one suggestion
// every few hours.
func (e *Engine) genPreferredActivity(_ context.Context, s *Snapshot) []model.Notification {
	if e.rules.SuggestionGapHours > 0 && s.Now.Hour()%e.rules.SuggestionGapHours != 0 {
		return nil
	}
	slot := timeOfDaySlot(s.Now.Hour())
	activities := s.Memory.PreferredActivities[slot]
	if len(activities) == 0 {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypePreferredActivity, slot, s.Now),
		Type:     model.TypePreferredActivity,
		Priority: model.PriorityLow,
		Title:    "Something you enjoy",
		Message:  fmt.Sprintf("You often like %s in the %s. Worth squeezing in?", activities[0], slot),
	}}
}

// genLifestyle emits a weekend reset recommendation during weekend mornings.
func (e *Engine) genLifestyle(_ context.Context, s *Snapshot) []model.Notification {
	wd := s.Now.Weekday()
	if wd != time.Saturday && wd != time.Sunday {
		return nil
	}
	hour := s.Now.Hour()
	if hour < e.rules.MorningStartHour || hour >= e.rules.MorningEndHour {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeLifestyleRecommend, "weekend", s.Now),
		Type:     model.TypeLifestyleRecommend,
		Priority: model.PriorityLow,
		Title:    "Weekend mode",
		Message:  "No rush today. A walk, some reading, or just a slow morning all count as a plan.",
	}}
}

// genSkippedPattern flags a habit whose usual time has passed today with no
// matching schedule completed.
func (e *Engine) genSkippedPattern(_ context.Context, s *Snapshot) []model.Notification {
	completedToday := map[string]bool{}
	for _, entry := range s.Today {
		if entry.Completed {
			completedToday[NormalizeText(entry.Text)] = true
		}
	}

	seen := map[string]bool{}
	var out []model.Notification
	for _, p := range s.Patterns {
		if p.Weekday != s.Now.Weekday() || p.Clock == "" {
			continue
		}
		bucket := timeBucket(p.Clock, 60)
		if bucket < 0 || s.Now.Hour() < bucket+1 {
			continue // not at least an hour past the habit's usual time yet
		}
		normalized := NormalizeText(p.Activity)
		if normalized == "" || seen[normalized] || completedToday[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, model.Notification{
			ID:       notifID(model.TypeSkippedPattern, normalized, s.Now),
			Type:     model.TypeSkippedPattern,
			Priority: model.PriorityMedium,
			Title:    "Habit check",
			Message:  fmt.Sprintf("You usually do %q by %s on %ss. Still planning to fit it in today?", p.Activity, p.Clock, p.Weekday),
		})
	}
	return out
}

// genFusedAlerts surfaces critical and warning cross-signals from the
// context-fusion collaborator; informational severities are ignored.
func (e *Engine) genFusedAlerts(_ context.Context, s *Snapshot) []model.Notification {
	var out []model.Notification
	for _, sig := range s.Signals {
		var priority model.Priority
		switch sig.Severity {
		case "critical":
			priority = model.PriorityHigh
		case "warning":
			priority = model.PriorityMedium
		default:
			continue
		}
		subject := NormalizeText(sig.Source + " " + sig.Title)
		out = append(out, model.Notification{
			ID:       notifID(model.TypeFusedAlert, subject, s.Now),
			Type:     model.TypeFusedAlert,
			Priority: priority,
			Title:    sig.Title,
			Message:  sig.Detail,
		})
	}
	return out
}

func timeOfDaySlot(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
