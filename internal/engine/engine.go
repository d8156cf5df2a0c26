package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Phraser rewrites notification copy via the AI copywriter. It is never
// consulted for decision logic, only for wording.
type Phraser interface {
	Phrase(ctx context.Context, prompt string) (string, error)
}

// Engine runs the decision pipeline for one snapshot. It is stateless and
// safe for concurrent use.
type Engine struct {
	rules   Rules
	phraser Phraser
	log     zerolog.Logger
}

// New constructs an Engine. phraser may be nil; generators then use their
// template copy.
func New(rules Rules, phraser Phraser, log zerolog.Logger) *Engine {
	return &Engine{rules: rules, phraser: phraser, log: log}
}

// Rules exposes the effective rule set (read-only).
func (e *Engine) Rules() Rules { return e.rules }

// Evaluate runs generate → dedup → escalate → quota over a snapshot and the
// user's lifecycle view, returning the notifications to surface this poll.
// Re-running with the same inputs yields the same output (idempotent per day
// and id).
func (e *Engine) Evaluate(ctx context.Context, s *Snapshot, view *lifecycle.View) []model.Notification {
	candidates := e.Generate(ctx, s)
	candidates = FilterCandidates(candidates, view, s.Now)
	candidates = e.applyEscalation(candidates, view, s.Now)
	return e.applyQuota(candidates, s.Profile.Plan, view.ShownCount)
}

// Generate runs every generator applicable to the user's plan, in fixed
// order. A panicking or failing generator is logged and skipped; siblings are
// unaffected.
func (e *Engine) Generate(ctx context.Context, s *Snapshot) []model.Notification {
	var out []model.Notification
	for _, g := range e.generators() {
		if g.MinPlan != "" && !s.Profile.Plan.AtLeast(g.MinPlan) {
			continue
		}
		out = append(out, e.runGenerator(ctx, g, s)...)
	}
	return out
}

func (e *Engine) runGenerator(ctx context.Context, g Generator, s *Snapshot) (out []model.Notification) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("generator", g.Name).Str("user", s.UserID).Msg("generator panicked, skipping")
			out = nil
		}
	}()
	return g.Run(ctx, s)
}

// Generator is one independent, side-effect-free rule evaluator.
type Generator struct {
	Name    string
	MinPlan model.Plan // "" means every plan
	Run     func(ctx context.Context, s *Snapshot) []model.Notification
}

// generators returns the fixed, ordered generator bank. Order matters only
// for the stable tie-break inside a priority tier.
func (e *Engine) generators() []Generator {
	return []Generator{
		{Name: "upcoming_reminder", Run: e.genUpcomingReminders},
		{Name: "morning_briefing", Run: e.genMorningBriefing},
		{Name: "unfinished_goals_alert", Run: e.genUnfinishedGoalsAlert},
		{Name: "evening_prep", Run: e.genEveningPrep},
		{Name: "evening_checkin", Run: e.genEveningCheckin},
		{Name: "goal_nudge", Run: e.genGoalNudge},
		{Name: "recurring_conversion", Run: e.genRecurringConversion},
		{Name: "pattern_day", Run: e.genPatternDay},
		{Name: "peak_hour", Run: e.genPeakHour},
		{Name: "important_event", Run: e.genImportantEvents},
		{Name: "preferred_activity", Run: e.genPreferredActivity},
		{Name: "lifestyle_recommend", Run: e.genLifestyle},
		{Name: "skipped_pattern", Run: e.genSkippedPattern},
		{Name: "fused_alert", Run: e.genFusedAlerts},
		{Name: "mood_checkin", MinPlan: model.PlanPro, Run: e.genMoodCheckin},
		{Name: "burnout_warning", MinPlan: model.PlanPro, Run: e.genBurnoutWarning},
		{Name: "focus_streak", MinPlan: model.PlanPro, Run: e.genFocusStreak},
		{Name: "schedule_overload", MinPlan: model.PlanPro, Run: e.genScheduleOverload},
		{Name: "weekly_deadline", MinPlan: model.PlanPro, Run: e.genWeeklyDeadline},
		{Name: "routine_break", MinPlan: model.PlanPro, Run: e.genRoutineBreak},
		{Name: "inactivity_return", MinPlan: model.PlanPro, Run: e.genInactivityReturn},
		{Name: "learning_reminder", MinPlan: model.PlanPro, Run: e.genLearningReminder},
		{Name: "pre_departure", MinPlan: model.PlanPro, Run: e.genPreDeparture},
		{Name: "weekly_review", MinPlan: model.PlanPro, Run: e.genWeeklyReview},
		{Name: "health_insight", MinPlan: model.PlanMax, Run: e.genHealthInsight},
		{Name: "commit_streak", MinPlan: model.PlanMax, Run: e.genCommitStreak},
		{Name: "post_lunch_energy", MinPlan: model.PlanMax, Run: e.genPostLunchEnergy},
	}
}

// notifID builds the deterministic id for a logical event: same date, type
// and subject always hash to the same id, which is what makes dedup across
// repeated evaluations work.
func notifID(typ model.NotificationType, subject string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", typ, subject, model.DateKey(day))
}

// phrase asks the copywriter to word a message. A transport error falls back
// to the template; content that comes back empty drops the candidate (the
// caller receives ok=false).
func (e *Engine) phrase(ctx context.Context, prompt, fallback string) (string, bool) {
	if e.phraser == nil {
		return fallback, true
	}
	msg, err := e.phraser.Phrase(ctx, prompt)
	if err != nil {
		e.log.Debug().Err(err).Msg("copywriter unavailable, using template copy")
		return fallback, true
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", false
	}
	return msg, true
}
