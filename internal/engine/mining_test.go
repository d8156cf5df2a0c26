package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

func strPtr(s string) *string { return &s }

func oneOff(id, text, date, start string) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		ID:           id,
		UserID:       "u1",
		Text:         text,
		SpecificDate: strPtr(date),
		StartTime:    strPtr(start),
		CreatedAt:    time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func recurring(id, text, start string, days ...time.Weekday) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		ID:         id,
		UserID:     "u1",
		Text:       text,
		StartTime:  strPtr(start),
		DaysOfWeek: days,
		CreatedAt:  time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMineRecurringCandidates_TwoMondaysBecomeCandidate(t *testing.T) {
	entries := []*model.ScheduleEntry{
		oneOff("s1", "Book club", "2025-02-24", "19:00"), // Monday
		oneOff("s2", "Book club", "2025-03-03", "19:20"), // next Monday, same bucket
	}

	cands := MineRecurringCandidates(entries, 2, 30)
	require.Len(t, cands, 1)
	c := cands[0]
	require.Equal(t, "book club", c.NormalizedText)
	require.Equal(t, time.Monday, c.Weekday)
	require.Equal(t, 2, c.Occurrences)
	require.Equal(t, "19:20", c.StartTime, "most recent entry supplies the representative time")
	require.Equal(t, []string{"s1", "s2"}, c.ScheduleIDs)
}

func TestMineRecurringCandidates_ThirdOccurrenceGrowsGroup(t *testing.T) {
	entries := []*model.ScheduleEntry{
		oneOff("s1", "Book club", "2025-02-24", "19:00"),
		oneOff("s2", "Book club", "2025-03-03", "19:20"),
		oneOff("s3", "Book club", "2025-03-10", "19:05"),
	}

	cands := MineRecurringCandidates(entries, 2, 30)
	require.Len(t, cands, 1)
	require.Equal(t, 3, cands[0].Occurrences)
	require.Equal(t, "19:05", cands[0].StartTime)
}

func TestMineRecurringCandidates_SingleOccurrenceIgnored(t *testing.T) {
	entries := []*model.ScheduleEntry{
		oneOff("s1", "Dentist", "2025-03-03", "09:00"),
	}
	require.Empty(t, MineRecurringCandidates(entries, 2, 30))
}

func TestMineRecurringCandidates_DifferentBucketsStaySeparate(t *testing.T) {
	entries := []*model.ScheduleEntry{
		oneOff("s1", "Gym", "2025-02-24", "19:00"),
		oneOff("s2", "Gym", "2025-03-03", "19:45"),
	}
	require.Empty(t, MineRecurringCandidates(entries, 2, 30))
}

func TestMineRecurringCandidates_ExistingRecurringSuppresses(t *testing.T) {
	entries := []*model.ScheduleEntry{
		oneOff("s1", "Book club", "2025-02-24", "19:00"),
		oneOff("s2", "Book Club", "2025-03-03", "19:20"),
		recurring("r1", "book club", "19:00", time.Monday),
	}
	require.Empty(t, MineRecurringCandidates(entries, 2, 30))
}

func TestMineRecurringCandidates_NormalizationMergesVariants(t *testing.T) {
	entries := []*model.ScheduleEntry{
		oneOff("s1", "  Book Club! ", "2025-02-24", "19:00"),
		oneOff("s2", "book club", "2025-03-03", "19:10"),
	}
	cands := MineRecurringCandidates(entries, 2, 30)
	require.Len(t, cands, 1)
	require.Equal(t, "book club", cands[0].NormalizedText)
}

func TestMineExplicitPatterns(t *testing.T) {
	entries := []*model.ScheduleEntry{
		recurring("r1", "Yoga class", "18:00", time.Tuesday, time.Thursday),
		recurring("r2", "Breakfast", "08:00", time.Monday), // daily routine, skipped
		oneOff("s1", "Dentist", "2025-03-03", "09:00"),     // one-off, skipped
	}

	patterns := MineExplicitPatterns(entries)
	require.Len(t, patterns, 2)
	require.Equal(t, time.Tuesday, patterns[0].Weekday)
	require.Equal(t, time.Thursday, patterns[1].Weekday)
	require.Equal(t, "Yoga class", patterns[0].Activity)
	require.Equal(t, "18:00", patterns[0].Clock)
}
