package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

func TestApplyEscalation_SuppressesAtThreshold(t *testing.T) {
	e := testEngine(t)
	now := mondayAt(12, 0) // 2025-03-10

	view := emptyView()
	view.Streaks[model.TypeGoalNudge] = model.DismissStreak{Count: 3, LastDate: "2025-03-08"}

	cands := []model.Notification{
		{ID: "n1", Type: model.TypeGoalNudge, Priority: model.PriorityLow},
		{ID: "n2", Type: model.TypeEveningCheckin, Priority: model.PriorityLow},
	}
	out := e.applyEscalation(cands, view, now)
	require.Len(t, out, 1)
	require.Equal(t, "n2", out[0].ID, "other types are untouched by the streak")
}

func TestApplyEscalation_WindowLapses(t *testing.T) {
	e := testEngine(t)
	view := emptyView()
	// dismissed three times, last on day 3; window covers through day 10
	view.Streaks[model.TypeGoalNudge] = model.DismissStreak{Count: 3, LastDate: "2025-03-03"}

	cands := []model.Notification{{ID: "n1", Type: model.TypeGoalNudge, Priority: model.PriorityLow}}

	// day 8 after the first dismissal: still inside the window
	out := e.applyEscalation(cands, view, mondayAt(12, 0)) // 2025-03-10
	require.Empty(t, out)

	// a week later the streak has lapsed and the candidate flows again
	out = e.applyEscalation(cands, view, mondayAt(12, 0).AddDate(0, 0, 7)) // 2025-03-17
	require.Len(t, out, 1)
}

func TestApplyEscalation_SoftensOneBelowThreshold(t *testing.T) {
	e := testEngine(t)
	view := emptyView()
	view.Streaks[model.TypeMorningBriefing] = model.DismissStreak{Count: 2, LastDate: "2025-03-09"}

	cands := []model.Notification{
		{ID: "n1", Type: model.TypeMorningBriefing, Priority: model.PriorityHigh},
	}
	out := e.applyEscalation(cands, view, mondayAt(12, 0))
	require.Len(t, out, 1)
	require.Equal(t, model.PriorityMedium, out[0].Priority)
}

func TestApplyEscalation_LowStaysLowWhenSoftened(t *testing.T) {
	e := testEngine(t)
	view := emptyView()
	view.Streaks[model.TypeGoalNudge] = model.DismissStreak{Count: 2, LastDate: "2025-03-09"}

	cands := []model.Notification{{ID: "n1", Type: model.TypeGoalNudge, Priority: model.PriorityLow}}
	out := e.applyEscalation(cands, view, mondayAt(12, 0))
	require.Len(t, out, 1)
	require.Equal(t, model.PriorityLow, out[0].Priority)
}

func TestApplyEscalation_ShortStreakPassesThrough(t *testing.T) {
	e := testEngine(t)
	view := emptyView()
	view.Streaks[model.TypeGoalNudge] = model.DismissStreak{Count: 1, LastDate: "2025-03-09"}

	cands := []model.Notification{{ID: "n1", Type: model.TypeGoalNudge, Priority: model.PriorityHigh}}
	out := e.applyEscalation(cands, view, mondayAt(12, 0))
	require.Len(t, out, 1)
	require.Equal(t, model.PriorityHigh, out[0].Priority)
}

func TestApplyEscalation_CorruptDatePassesThrough(t *testing.T) {
	e := testEngine(t)
	view := emptyView()
	view.Streaks[model.TypeGoalNudge] = model.DismissStreak{Count: 5, LastDate: "not-a-date"}

	cands := []model.Notification{{ID: "n1", Type: model.TypeGoalNudge, Priority: model.PriorityLow}}
	out := e.applyEscalation(cands, view, mondayAt(12, 0))
	require.Len(t, out, 1, "corrupt streak state must not suppress")
}
