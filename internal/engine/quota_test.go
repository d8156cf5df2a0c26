package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

func quotaCands() []model.Notification {
	return []model.Notification{
		{ID: "l1", Priority: model.PriorityLow},
		{ID: "h1", Priority: model.PriorityHigh},
		{ID: "m1", Priority: model.PriorityMedium},
		{ID: "l2", Priority: model.PriorityLow},
		{ID: "m2", Priority: model.PriorityMedium},
		{ID: "h2", Priority: model.PriorityHigh},
		{ID: "m3", Priority: model.PriorityMedium},
		{ID: "l3", Priority: model.PriorityLow},
	}
}

func TestApplyQuota_PriorityOrderAndCap(t *testing.T) {
	e := testEngine(t)

	out := e.applyQuota(quotaCands(), model.PlanFree, 0)
	require.Len(t, out, 5)

	got := make([]string, len(out))
	for i, n := range out {
		got[i] = n.ID
	}
	// high first, then medium, stable within each tier
	require.Equal(t, []string{"h1", "h2", "m1", "m2", "m3"}, got)
}

func TestApplyQuota_RemainingDailyBudget(t *testing.T) {
	e := testEngine(t)

	// free plan, 3 of 5 already shown today
	out := e.applyQuota(quotaCands(), model.PlanFree, 3)
	require.Len(t, out, 2)
	require.Equal(t, "h1", out[0].ID)
	require.Equal(t, "h2", out[1].ID)

	// budget exhausted
	require.Empty(t, e.applyQuota(quotaCands(), model.PlanFree, 5))

	// overshoot clamps to zero rather than going negative
	require.Empty(t, e.applyQuota(quotaCands(), model.PlanFree, 9))
}

func TestApplyQuota_UnlimitedPlanStillHasEvalCap(t *testing.T) {
	e := testEngine(t)

	// max plan has no daily limit but the per-evaluation cap still applies
	out := e.applyQuota(quotaCands(), model.PlanMax, 1000)
	require.Len(t, out, 5)
}

func TestApplyQuota_UnknownPlanFallsBackToFree(t *testing.T) {
	e := testEngine(t)
	out := e.applyQuota(quotaCands(), model.Plan("trial"), 4)
	require.Len(t, out, 1)
}

func TestApplyQuota_FewerCandidatesThanBudget(t *testing.T) {
	e := testEngine(t)
	cands := []model.Notification{{ID: "h1", Priority: model.PriorityHigh}}
	out := e.applyQuota(cands, model.PlanPro, 0)
	require.Len(t, out, 1)
}
