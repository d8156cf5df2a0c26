package engine

import (
	"sort"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// applyQuota orders surviving candidates by priority (stable within a tier,
// preserving generator order) and truncates to what the user's remaining
// daily budget and the per-evaluation cap allow. A zero daily limit means
// unlimited.
func (e *Engine) applyQuota(cands []model.Notification, plan model.Plan, shownToday int) []model.Notification {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Priority.Rank() < cands[j].Priority.Rank()
	})

	remaining := e.rules.MaxPerEvaluation
	if limit := e.rules.DailyLimit(plan); limit > 0 {
		left := limit - shownToday
		if left < 0 {
			left = 0
		}
		if left < remaining {
			remaining = left
		}
	}
	if remaining < len(cands) {
		cands = cands[:remaining]
	}
	return cands
}
