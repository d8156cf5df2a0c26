package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Plan-gated generators. The registry restricts these to pro and max plans;
// nothing in here re-checks the plan.

const (
	moodCheckinHour      = 14
	burnoutHeavyDay      = 6
	burnoutSevereDay     = 8
	focusStreakDays      = 3
	learningStartHour    = 19
	learningEndHour      = 22
	preDepartureMinutes  = 30
	weeklyReviewHour     = 20
	backToBackGapMinutes = 15
	backToBackMinRun     = 3
	commitStreakMinDone  = 10
	postLunchHour        = 13
)

// genMoodCheckin asks how the day feels once, mid-afternoon.
func (e *Engine) genMoodCheckin(_ context.Context, s *Snapshot) []model.Notification {
	if s.Now.Hour() != moodCheckinHour {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeMoodCheckin, "mood", s.Now),
		Type:     model.TypeMoodCheckin,
		Priority: model.PriorityLow,
		Title:    "Quick check-in",
		Message:  "How is the day treating you so far? A one-minute pause now beats a crash later.",
	}}
}

// genBurnoutWarning fires when today's schedule count crosses the heavy-day
// line, escalating to high priority on severe days.
func (e *Engine) genBurnoutWarning(_ context.Context, s *Snapshot) []model.Notification {
	n := len(s.Today)
	if n < burnoutHeavyDay {
		return nil
	}
	priority := model.PriorityMedium
	if n >= burnoutSevereDay {
		priority = model.PriorityHigh
	}
	return []model.Notification{{
		ID:       notifID(model.TypeBurnoutWarning, "load", s.Now),
		Type:     model.TypeBurnoutWarning,
		Priority: priority,
		Title:    "Heavy day",
		Message:  fmt.Sprintf("%d schedules today. Consider moving something to tomorrow or blocking a real break.", n),
	}}
}

// genFocusStreak celebrates completing at least one schedule on each of the
// last few consecutive days.
func (e *Engine) genFocusStreak(_ context.Context, s *Snapshot) []model.Notification {
	completedOn := map[string]bool{}
	for _, entry := range s.History {
		if entry.Completed && entry.SpecificDate != nil {
			completedOn[*entry.SpecificDate] = true
		}
	}
	for i := 1; i <= focusStreakDays; i++ {
		if !completedOn[model.DateKey(s.Now.AddDate(0, 0, -i))] {
			return nil
		}
	}
	return []model.Notification{{
		ID:       notifID(model.TypeFocusStreak, "streak", s.Now),
		Type:     model.TypeFocusStreak,
		Priority: model.PriorityLow,
		Title:    "On a roll",
		Message:  fmt.Sprintf("That's %d days in a row with completed schedules. Keep it going today.", focusStreakDays),
	}}
}

// genScheduleOverload flags the first pair of overlapping timed entries today.
func (e *Engine) genScheduleOverload(_ context.Context, s *Snapshot) []model.Notification {
	type span struct {
		entry      *model.ScheduleEntry
		start, end time.Time
	}
	var spans []span
	for _, entry := range s.Today {
		if entry.StartTime == nil || entry.EndTime == nil {
			continue
		}
		start, ok := entry.StartAt(s.Now)
		if !ok {
			continue
		}
		endClock, err := time.Parse(model.ClockLayout, *entry.EndTime)
		if err != nil {
			continue
		}
		end := time.Date(s.Now.Year(), s.Now.Month(), s.Now.Day(), endClock.Hour(), endClock.Minute(), 0, 0, s.Now.Location())
		if !end.After(start) {
			continue
		}
		spans = append(spans, span{entry: entry, start: start, end: end})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.start.Before(prev.end) {
			return []model.Notification{{
				ID:       notifID(model.TypeScheduleOverload, prev.entry.ID+":"+cur.entry.ID, s.Now),
				Type:     model.TypeScheduleOverload,
				Priority: model.PriorityMedium,
				Title:    "Schedule conflict",
				Message:  fmt.Sprintf("%q and %q overlap today. One of them probably needs a new slot.", prev.entry.Text, cur.entry.Text),
			}}
		}
	}
	return nil
}

// genWeeklyDeadline surfaces important one-off entries dated within the next
// week, one notification per entry.
func (e *Engine) genWeeklyDeadline(_ context.Context, s *Snapshot) []model.Notification {
	today := model.DateKey(s.Now)
	horizon := model.DateKey(s.Now.AddDate(0, 0, 7))

	var out []model.Notification
	for _, entry := range s.History {
		if entry.IsRecurring() || entry.SpecificDate == nil || entry.Completed || !isImportant(entry.Text) {
			continue
		}
		date := *entry.SpecificDate
		if date <= today || date > horizon {
			continue
		}
		out = append(out, model.Notification{
			ID:       notifID(model.TypeWeeklyDeadline, entry.ID, s.Now),
			Type:     model.TypeWeeklyDeadline,
			Priority: model.PriorityMedium,
			Title:    "Coming up this week",
			Message:  fmt.Sprintf("%q is on %s. Worth blocking prep time now.", entry.Text, date),
		})
	}
	return out
}

// genRoutineBreak notices a habit day with an empty schedule.
func (e *Engine) genRoutineBreak(_ context.Context, s *Snapshot) []model.Notification {
	if len(s.Today) > 0 {
		return nil
	}
	for _, p := range s.Patterns {
		if p.Weekday == s.Now.Weekday() {
			return []model.Notification{{
				ID:       notifID(model.TypeRoutineBreak, "empty", s.Now),
				Type:     model.TypeRoutineBreak,
				Priority: model.PriorityLow,
				Title:    "Quiet day",
				Message:  fmt.Sprintf("You usually have %q on %ss but nothing is scheduled today. Intentional?", p.Activity, p.Weekday),
			}}
		}
	}
	return nil
}

// genInactivityReturn welcomes a user back after a week without creating any
// schedule, provided they ever had one.
func (e *Engine) genInactivityReturn(_ context.Context, s *Snapshot) []model.Notification {
	if len(s.History) == 0 {
		return nil
	}
	cutoff := s.Now.AddDate(0, 0, -7)
	for _, entry := range s.History {
		if entry.CreatedAt.After(cutoff) {
			return nil
		}
	}
	return []model.Notification{{
		ID:       notifID(model.TypeInactivityReturn, "return", s.Now),
		Type:     model.TypeInactivityReturn,
		Priority: model.PriorityMedium,
		Title:    "Welcome back",
		Message:  "It's been over a week since you planned anything. Want to sketch out this week?",
	}}
}

// genLearningReminder suggests an evening session on a remembered recurring
// topic of interest.
func (e *Engine) genLearningReminder(_ context.Context, s *Snapshot) []model.Notification {
	hour := s.Now.Hour()
	if hour < learningStartHour || hour >= learningEndHour {
		return nil
	}
	if len(s.Memory.RecurringTopics) == 0 {
		return nil
	}
	topic := s.Memory.RecurringTopics[0]
	return []model.Notification{{
		ID:       notifID(model.TypeLearningReminder, NormalizeText(topic), s.Now),
		Type:     model.TypeLearningReminder,
		Priority: model.PriorityLow,
		Title:    "Evening session?",
		Message:  fmt.Sprintf("You've been into %s lately. A focused half hour tonight would keep the momentum.", topic),
	}}
}

// genPreDeparture gives an extra-early warning before important entries, far
// enough ahead to leave for a venue.
func (e *Engine) genPreDeparture(_ context.Context, s *Snapshot) []model.Notification {
	now := s.Now.Truncate(time.Minute)
	var out []model.Notification
	for _, entry := range s.Today {
		if entry.Completed || !isImportant(entry.Text) {
			continue
		}
		start, ok := entry.StartAt(s.Now)
		if !ok {
			continue
		}
		if int(start.Sub(now).Minutes()) != preDepartureMinutes {
			continue
		}
		expires := start
		out = append(out, model.Notification{
			ID:        notifID(model.TypePreDeparture, entry.ID, s.Now),
			Type:      model.TypePreDeparture,
			Priority:  model.PriorityMedium,
			Title:     "Time to get moving",
			Message:   fmt.Sprintf("%q starts in %d minutes. If you need to travel, now is the time.", entry.Text, preDepartureMinutes),
			ExpiresAt: &expires,
		})
	}
	return out
}

// genWeeklyReview proposes a Sunday-evening look back over the week.
func (e *Engine) genWeeklyReview(ctx context.Context, s *Snapshot) []model.Notification {
	if s.Now.Weekday() != time.Sunday || s.Now.Hour() != weeklyReviewHour {
		return nil
	}
	done := 0
	weekStart := model.DateKey(s.Now.AddDate(0, 0, -6))
	for _, entry := range s.History {
		if entry.Completed && entry.SpecificDate != nil && *entry.SpecificDate >= weekStart {
			done++
		}
	}
	fallback := fmt.Sprintf("You completed %d schedules this week. Ten minutes of review now makes Monday easier.", done)
	prompt := fmt.Sprintf("Write one short, encouraging Sunday-evening weekly review prompt. The user completed %d schedules this week.", done)
	msg, ok := e.phrase(ctx, prompt, fallback)
	if !ok {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeWeeklyReview, "review", s.Now),
		Type:     model.TypeWeeklyReview,
		Priority: model.PriorityMedium,
		Title:    "Weekly review",
		Message:  msg,
	}}
}

// genHealthInsight notices a run of back-to-back timed entries with no real
// break between them.
func (e *Engine) genHealthInsight(_ context.Context, s *Snapshot) []model.Notification {
	var starts []time.Time
	for _, entry := range s.Today {
		if start, ok := entry.StartAt(s.Now); ok {
			starts = append(starts, start)
		}
	}
	if len(starts) < backToBackMinRun {
		return nil
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	run := 1
	for i := 1; i < len(starts); i++ {
		if starts[i].Sub(starts[i-1]) < time.Duration(backToBackGapMinutes)*time.Minute {
			run++
			if run >= backToBackMinRun {
				return []model.Notification{{
					ID:       notifID(model.TypeHealthInsight, "backtoback", s.Now),
					Type:     model.TypeHealthInsight,
					Priority: model.PriorityLow,
					Title:    "Back-to-back day",
					Message:  fmt.Sprintf("%d of today's schedules run back to back. Plan water and a stretch between them.", run),
				}}
			}
		} else {
			run = 1
		}
	}
	return nil
}

// genCommitStreak acknowledges a heavy week of completed schedules.
func (e *Engine) genCommitStreak(_ context.Context, s *Snapshot) []model.Notification {
	weekStart := model.DateKey(s.Now.AddDate(0, 0, -6))
	done := 0
	for _, entry := range s.History {
		if entry.Completed && entry.SpecificDate != nil && *entry.SpecificDate >= weekStart {
			done++
		}
	}
	if done < commitStreakMinDone {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypeCommitStreak, "week", s.Now),
		Type:     model.TypeCommitStreak,
		Priority: model.PriorityLow,
		Title:    "Strong week",
		Message:  fmt.Sprintf("%d schedules completed in the last 7 days. Whatever you're doing, it's working.", done),
	}}
}

// genPostLunchEnergy suggests a light task in the early-afternoon dip.
func (e *Engine) genPostLunchEnergy(_ context.Context, s *Snapshot) []model.Notification {
	if s.Now.Hour() != postLunchHour {
		return nil
	}
	return []model.Notification{{
		ID:       notifID(model.TypePostLunchEnergy, "dip", s.Now),
		Type:     model.TypePostLunchEnergy,
		Priority: model.PriorityLow,
		Title:    "Post-lunch dip",
		Message:  "Energy usually dips around now. A short walk or an easy task fits better than deep work.",
	}}
}
