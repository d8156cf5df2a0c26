package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// genUpcomingReminders emits exact-minute reminders ahead of schedule starts:
// a high-priority one at the reminder lead, and an earlier medium-priority one
// for important entries. Matching is intentionally equality-on-minutes; the
// poller is expected to call at least once per minute, and a missed minute
// means a skipped reminder rather than a late one.
func (e *Engine) genUpcomingReminders(_ context.Context, s *Snapshot) []model.Notification {
	var out []model.Notification
	now := s.Now.Truncate(time.Minute)
	for _, entry := range s.Today {
		if entry.Completed {
			continue
		}
		start, ok := entry.StartAt(s.Now)
		if !ok {
			continue
		}
		diffMinutes := int(start.Sub(now).Minutes())

		if diffMinutes == e.rules.ReminderLeadMinutes {
			expires := start
			out = append(out, model.Notification{
				ID:        notifID(model.TypeScheduleReminder, entry.ID, s.Now),
				Type:      model.TypeScheduleReminder,
				Priority:  model.PriorityHigh,
				Title:     "Starting soon",
				Message:   fmt.Sprintf("%q starts in %d minutes.", entry.Text, diffMinutes),
				ExpiresAt: &expires,
			})
		}
		if diffMinutes == e.rules.ImportantLeadMinutes && isImportant(entry.Text) {
			expires := start
			out = append(out, model.Notification{
				ID:        notifID(model.TypeScheduleReminder, entry.ID+":early", s.Now),
				Type:      model.TypeScheduleReminder,
				Priority:  model.PriorityMedium,
				Title:     "Coming up",
				Message:   fmt.Sprintf("%q starts in %d minutes. Time to wrap up what you're doing.", entry.Text, diffMinutes),
				ExpiresAt: &expires,
			})
		}
	}
	return out
}

// genMorningBriefing summarizes the day during the morning window when at
// least one important schedule is on it.
func (e *Engine) genMorningBriefing(ctx context.Context, s *Snapshot) []model.Notification {
	hour := s.Now.Hour()
	if hour < e.rules.MorningStartHour || hour >= e.rules.MorningEndHour {
		return nil
	}
	var important []string
	for _, entry := range s.Today {
		if isImportant(entry.Text) {
			important = append(important, entry.Text)
		}
	}
	if len(important) == 0 {
		return nil
	}

	fallback := fmt.Sprintf("You have %d schedules today, including: %s.", len(s.Today), strings.Join(important, ", "))
	prompt := fmt.Sprintf("Write one short, friendly morning briefing. The user has %d schedules today; the important ones are: %s.", len(s.Today), strings.Join(important, ", "))
	msg, ok := e.phrase(ctx, prompt, fallback)
	if !ok {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeMorningBriefing, "daily", s.Now),
		Type:     model.TypeMorningBriefing,
		Priority: model.PriorityMedium,
		Title:    "Good morning",
		Message:  msg,
	}}
}

// genUnfinishedGoalsAlert flags goals left open from previous days: urgent in
// the morning window, re-emitted at lower priority in the afternoon window.
// The type is a per-day singleton, so the afternoon pass only survives when
// the morning one was never shown.
func (e *Engine) genUnfinishedGoalsAlert(_ context.Context, s *Snapshot) []model.Notification {
	var carried []*model.Goal
	today := model.DateKey(s.Now)
	for _, g := range s.OpenGoals {
		if model.DateKey(g.CreatedAt) < today {
			carried = append(carried, g)
		}
	}
	if len(carried) == 0 {
		return nil
	}

	hour := s.Now.Hour()
	priority := model.Priority("")
	switch {
	case hour >= e.rules.MorningStartHour && hour < e.rules.MorningEndHour:
		priority = model.PriorityHigh
	case hour >= e.rules.AfternoonStartHour && hour < e.rules.AfternoonEndHour:
		priority = model.PriorityMedium
	default:
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeUrgentAlert, "goals", s.Now),
		Type:     model.TypeUrgentAlert,
		Priority: priority,
		Title:    "Unfinished goals",
		Message:  fmt.Sprintf("%d goals carried over from yesterday. First up: %q.", len(carried), carried[0].Text),
	}}
}

// genEveningPrep suggests winding down shortly before the profile's sleep time.
func (e *Engine) genEveningPrep(_ context.Context, s *Snapshot) []model.Notification {
	if s.Profile.SleepTime == nil {
		return nil
	}
	clock, err := time.Parse(model.ClockLayout, *s.Profile.SleepTime)
	if err != nil {
		return nil
	}
	sleepAt := time.Date(s.Now.Year(), s.Now.Month(), s.Now.Day(), clock.Hour(), clock.Minute(), 0, 0, s.Now.Location())
	lead := sleepAt.Sub(s.Now.Truncate(time.Minute))
	if lead <= 0 || lead > time.Duration(e.rules.SleepPrepLeadMinutes)*time.Minute {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeEveningPrep, "winddown", s.Now),
		Type:     model.TypeEveningPrep,
		Priority: model.PriorityLow,
		Title:    "Wind down",
		Message:  "Your usual sleep time is coming up. A good moment to put tomorrow's list together and switch off.",
	}}
}

// genEveningCheckin emits a fixed-hour check-in on days that had any schedule.
func (e *Engine) genEveningCheckin(_ context.Context, s *Snapshot) []model.Notification {
	if s.Now.Hour() != e.rules.EveningCheckinHour || len(s.Today) == 0 {
		return nil
	}
	done := 0
	for _, entry := range s.Today {
		if entry.Completed {
			done++
		}
	}
	return []model.Notification{{
		ID:       notifID(model.TypeEveningCheckin, "checkin", s.Now),
		Type:     model.TypeEveningCheckin,
		Priority: model.PriorityLow,
		Title:    "How did today go?",
		Message:  fmt.Sprintf("You completed %d of %d schedules today.", done, len(s.Today)),
	}}
}

// genGoalNudge nudges about the single oldest stale goal.
func (e *Engine) genGoalNudge(_ context.Context, s *Snapshot) []model.Notification {
	var oldest *model.Goal
	for _, g := range s.OpenGoals {
		if oldest == nil || g.CreatedAt.Before(oldest.CreatedAt) {
			oldest = g
		}
	}
	if oldest == nil {
		return nil
	}
	ageDays := int(s.Now.Sub(oldest.CreatedAt).Hours() / 24)
	if ageDays < e.rules.GoalStaleDays {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeGoalNudge, oldest.ID, s.Now),
		Type:     model.TypeGoalNudge,
		Priority: model.PriorityLow,
		Title:    "Still on your list",
		Message:  fmt.Sprintf("%q has been open for %d days. Even a small step counts.", oldest.Text, ageDays),
	}}
}

// genRecurringConversion proposes converting each mined recurring candidate
// into a true recurring schedule. The action payload carries everything the
// caller needs to perform the merge on acceptance.
func (e *Engine) genRecurringConversion(_ context.Context, s *Snapshot) []model.Notification {
	var out []model.Notification
	for _, c := range s.Recurring {
		subject := fmt.Sprintf("%s:%d", c.NormalizedText, c.Weekday)
		out = append(out, model.Notification{
			ID:       notifID(model.TypeRecurringSuggestion, subject, s.Now),
			Type:     model.TypeRecurringSuggestion,
			Priority: model.PriorityMedium,
			Title:    "Make it a habit?",
			Message: fmt.Sprintf("You've scheduled %q on %d %ss around %s. Turn it into a weekly schedule?",
				c.NormalizedText, c.Occurrences, c.Weekday, c.StartTime),
			ActionType: model.ActionConvertToRecurring,
			ActionPayload: map[string]interface{}{
				"scheduleIds": c.ScheduleIDs,
				"daysOfWeek":  []time.Weekday{c.Weekday},
				"startTime":   c.StartTime,
				"text":        c.NormalizedText,
			},
		})
	}
	return out
}
