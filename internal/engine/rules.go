// Package engine implements the proactive notification decision pipeline:
// snapshot → mine → generate → dedup → escalate → quota. Every stage is a pure
// function over the snapshot and the lifecycle view; nothing in this package
// writes persistent state.
package engine

import (
	"github.com/loomplan-ai/loomplan-notify/internal/config"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Rules carries every tunable the pipeline consults. The escalation threshold
// and suppression window live here once so no stage hard-codes its own copy.
type Rules struct {
	EscalationThreshold   int
	SuppressionWindowDays int

	// DailyLimits maps plan → daily cap; 0 means unlimited.
	DailyLimits      map[model.Plan]int
	MaxPerEvaluation int

	ReminderLeadMinutes  int
	ImportantLeadMinutes int

	MorningStartHour   int
	MorningEndHour     int
	AfternoonStartHour int
	AfternoonEndHour   int
	EveningCheckinHour int

	GoalStaleDays int

	MiningLookbackDays  int
	MiningMinOccurrence int
	MiningBucketMinutes int

	SuggestionGapHours   int
	SleepPrepLeadMinutes int
}

// DefaultRules returns the production defaults.
func DefaultRules() Rules {
	return Rules{
		EscalationThreshold:   3,
		SuppressionWindowDays: 7,
		DailyLimits: map[model.Plan]int{
			model.PlanFree: 5,
			model.PlanPro:  15,
			model.PlanMax:  0,
		},
		MaxPerEvaluation:     5,
		ReminderLeadMinutes:  10,
		ImportantLeadMinutes: 20,
		MorningStartHour:     7,
		MorningEndHour:       10,
		AfternoonStartHour:   15,
		AfternoonEndHour:     17,
		EveningCheckinHour:   21,
		GoalStaleDays:        3,
		MiningLookbackDays:   60,
		MiningMinOccurrence:  2,
		MiningBucketMinutes:  30,
		SuggestionGapHours:   3,
		SleepPrepLeadMinutes: 45,
	}
}

// RulesFromConfig maps service configuration onto engine rules.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		EscalationThreshold:   cfg.EscalationThreshold,
		SuppressionWindowDays: cfg.SuppressionWindowDays,
		DailyLimits: map[model.Plan]int{
			model.PlanFree: cfg.DailyLimitFree,
			model.PlanPro:  cfg.DailyLimitPro,
			model.PlanMax:  cfg.DailyLimitMax,
		},
		MaxPerEvaluation:     cfg.MaxPerEvaluation,
		ReminderLeadMinutes:  cfg.ReminderLeadMinutes,
		ImportantLeadMinutes: cfg.ImportantLeadMinutes,
		MorningStartHour:     cfg.MorningStartHour,
		MorningEndHour:       cfg.MorningEndHour,
		AfternoonStartHour:   cfg.AfternoonStartHour,
		AfternoonEndHour:     cfg.AfternoonEndHour,
		EveningCheckinHour:   cfg.EveningCheckinHour,
		GoalStaleDays:        cfg.GoalStaleDays,
		MiningLookbackDays:   cfg.MiningLookbackDays,
		MiningMinOccurrence:  cfg.MiningMinOccurrence,
		MiningBucketMinutes:  cfg.MiningBucketMinutes,
		SuggestionGapHours:   cfg.SuggestionGapHours,
		SleepPrepLeadMinutes: cfg.SleepPrepLeadMinutes,
	}
}

// DailyLimit resolves a plan's daily notification cap; 0 means unlimited.
func (r Rules) DailyLimit(plan model.Plan) int {
	limit, ok := r.DailyLimits[plan]
	if !ok {
		return r.DailyLimits[model.PlanFree]
	}
	return limit
}
