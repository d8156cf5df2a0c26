package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// Snapshot is the immutable read model for a single evaluation pass. It is
// built once per call; generators only read it.
type Snapshot struct {
	UserID  string
	Now     time.Time
	Profile model.Profile

	// Today holds entries occurring on Now's calendar day (one-off matches
	// and recurring entries whose weekday matches).
	Today []*model.ScheduleEntry

	// History holds the mining lookback window: recurring entries plus
	// one-off entries dated within the window.
	History []*model.ScheduleEntry

	OpenGoals []*model.Goal
	Memory    model.MemorySummary
	Signals   []model.FusionSignal

	// Patterns and Recurring are the mining outputs fed to generators.
	Patterns  []model.WeekdayPattern
	Recurring []model.RecurringCandidate
}

// MemoryReader is the behavioral-memory collaborator. Optional: when nil or
// failing, the snapshot's Memory field stays zero.
type MemoryReader interface {
	Summary(ctx context.Context, userID string) (model.MemorySummary, error)
}

// SignalReader is the context-fusion collaborator. Optional and non-fatal.
type SignalReader interface {
	Signals(ctx context.Context, userID string) ([]model.FusionSignal, error)
}

// SnapshotBuilder collects a user's schedules, goals, memory summary and
// fusion signals into one Snapshot. Every collaborator read is bounded by a
// short timeout and fails soft: a missing source empties its field and the
// pipeline continues with fewer candidates. Build never aborts.
type SnapshotBuilder struct {
	store   store.Store
	memory  MemoryReader
	fusion  SignalReader
	rules   Rules
	timeout time.Duration
	log     zerolog.Logger
}

func NewSnapshotBuilder(st store.Store, memory MemoryReader, fusion SignalReader, rules Rules, timeout time.Duration, log zerolog.Logger) *SnapshotBuilder {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &SnapshotBuilder{store: st, memory: memory, fusion: fusion, rules: rules, timeout: timeout, log: log}
}

// Build assembles the snapshot for one user at the given evaluation time.
func (b *SnapshotBuilder) Build(ctx context.Context, userID string, now time.Time) *Snapshot {
	s := &Snapshot{
		UserID:  userID,
		Now:     now,
		Profile: model.Profile{UserID: userID, Plan: model.PlanFree},
	}

	err := b.read(ctx, func(rctx context.Context) error {
		profile, err := b.store.Profiles().Get(rctx, userID)
		if err == nil {
			s.Profile = *profile
		}
		return err
	})
	if err != nil {
		b.log.Warn().Err(err).Str("user", userID).Msg("profile unavailable, using defaults")
	}

	fromDate := model.DateKey(now.AddDate(0, 0, -b.rules.MiningLookbackDays))
	err = b.read(ctx, func(rctx context.Context) error {
		entries, err := b.store.Schedules().ListSince(rctx, userID, fromDate)
		if err != nil {
			return err
		}
		s.History = entries
		for _, e := range entries {
			if e.OccursOn(now) {
				s.Today = append(s.Today, e)
			}
		}
		return nil
	})
	if err != nil {
		b.log.Warn().Err(err).Str("user", userID).Msg("schedules unavailable")
	}

	err = b.read(ctx, func(rctx context.Context) error {
		goals, err := b.store.Goals().ListOpen(rctx, userID)
		if err == nil {
			s.OpenGoals = goals
		}
		return err
	})
	if err != nil {
		b.log.Warn().Err(err).Str("user", userID).Msg("goals unavailable")
	}

	if b.memory != nil {
		err = b.read(ctx, func(rctx context.Context) error {
			summary, err := b.memory.Summary(rctx, userID)
			if err == nil {
				s.Memory = summary
			}
			return err
		})
		if err != nil {
			b.log.Warn().Err(err).Str("user", userID).Msg("memory store unavailable")
		}
	}

	if b.fusion != nil {
		err = b.read(ctx, func(rctx context.Context) error {
			signals, err := b.fusion.Signals(rctx, userID)
			if err == nil {
				s.Signals = signals
			}
			return err
		})
		if err != nil {
			b.log.Warn().Err(err).Str("user", userID).Msg("fusion source unavailable")
		}
	}

	s.Patterns = MineExplicitPatterns(s.History)
	s.Recurring = MineRecurringCandidates(s.History, b.rules.MiningMinOccurrence, b.rules.MiningBucketMinutes)
	return s
}

// read runs one collaborator read under the builder's timeout.
func (b *SnapshotBuilder) read(ctx context.Context, fn func(ctx context.Context) error) error {
	rctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return fn(rctx)
}
