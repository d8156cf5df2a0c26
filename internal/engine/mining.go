package engine

import (
	"sort"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// MineExplicitPatterns projects recurring schedule entries into weekly
// (weekday, activity, time) tuples. Universal daily-routine activities are
// skipped: "sleep every day" is not a pattern worth nudging about.
func MineExplicitPatterns(entries []*model.ScheduleEntry) []model.WeekdayPattern {
	var out []model.WeekdayPattern
	for _, e := range entries {
		if !e.IsRecurring() {
			continue
		}
		if isDailyRoutine(NormalizeText(e.Text)) {
			continue
		}
		clock := ""
		if e.StartTime != nil {
			clock = *e.StartTime
		}
		for _, wd := range e.DaysOfWeek {
			out = append(out, model.WeekdayPattern{Weekday: wd, Activity: e.Text, Clock: clock})
		}
	}
	return out
}

type miningKey struct {
	text    string
	weekday time.Weekday
	bucket  int
}

// MineRecurringCandidates infers implicit weekly habits from one-off entries.
// One-off entries are grouped by (normalized text, weekday of their date,
// time bucket); a group of minOccurrences or more becomes a candidate unless
// a recurring schedule with the same normalized text already exists. When
// several timestamps land in one bucket, the most recent entry's exact start
// time is the representative time.
func MineRecurringCandidates(entries []*model.ScheduleEntry, minOccurrences, bucketMinutes int) []model.RecurringCandidate {
	if minOccurrences <= 0 {
		minOccurrences = 2
	}
	if bucketMinutes <= 0 {
		bucketMinutes = 30
	}

	existing := map[string]bool{}
	for _, e := range entries {
		if e.IsRecurring() {
			existing[NormalizeText(e.Text)] = true
		}
	}

	groups := map[miningKey][]*model.ScheduleEntry{}
	for _, e := range entries {
		if e.IsRecurring() || e.SpecificDate == nil || e.StartTime == nil {
			continue
		}
		date, err := time.Parse(model.DateKeyLayout, *e.SpecificDate)
		if err != nil {
			continue
		}
		bucket := timeBucket(*e.StartTime, bucketMinutes)
		if bucket < 0 {
			continue
		}
		key := miningKey{text: NormalizeText(e.Text), weekday: date.Weekday(), bucket: bucket}
		if key.text == "" {
			continue
		}
		groups[key] = append(groups[key], e)
	}

	var out []model.RecurringCandidate
	for key, members := range groups {
		if len(members) < minOccurrences || existing[key.text] {
			continue
		}

		// chronological order; last member supplies the representative time
		sort.SliceStable(members, func(i, j int) bool {
			if *members[i].SpecificDate != *members[j].SpecificDate {
				return *members[i].SpecificDate < *members[j].SpecificDate
			}
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})

		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		out = append(out, model.RecurringCandidate{
			NormalizedText: key.text,
			Weekday:        key.weekday,
			StartTime:      *members[len(members)-1].StartTime,
			ScheduleIDs:    ids,
			Occurrences:    len(members),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].NormalizedText != out[j].NormalizedText {
			return out[i].NormalizedText < out[j].NormalizedText
		}
		return out[i].Weekday < out[j].Weekday
	})
	return out
}
