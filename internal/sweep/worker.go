// Package sweep drives server-initiated evaluation: on a cron schedule it
// walks every known user, evaluates their notifications, pushes what
// surfaced, and marks it shown. The HTTP evaluate endpoint stays untouched;
// the worker is just another caller of the same service.
package sweep

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// Evaluator is the slice of the notification service the worker needs.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string, now time.Time) ([]model.Notification, error)
	MarkShown(ctx context.Context, userID string, typ model.NotificationType, notificationID string, now time.Time) error
}

// Sender delivers one notification to the user's devices.
type Sender interface {
	Send(ctx context.Context, userID string, n model.Notification) error
}

// Options tune the sweep cadence and fan-out.
type Options struct {
	CronSpec  string
	GroupSize int
	Pause     time.Duration // between user groups
}

// Worker runs scheduled sweeps over all users.
type Worker struct {
	store    store.Store
	eval     Evaluator
	sender   Sender
	opts     Options
	log      zerolog.Logger
	cron     *cron.Cron
	sweeping atomic.Bool
}

func NewWorker(st store.Store, eval Evaluator, sender Sender, opts Options, log zerolog.Logger) *Worker {
	if opts.CronSpec == "" {
		opts.CronSpec = "* * * * *"
	}
	if opts.GroupSize <= 0 {
		opts.GroupSize = 3
	}
	return &Worker{store: st, eval: eval, sender: sender, opts: opts, log: log}
}

// Start registers the cron job and blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.opts.CronSpec, func() {
		// skip a tick rather than stack sweeps when one overruns
		if !w.sweeping.CompareAndSwap(false, true) {
			w.log.Warn().Msg("previous sweep still running, skipping tick")
			return
		}
		defer w.sweeping.Store(false)

		sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		w.Sweep(sweepCtx, time.Now())
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.log.Info().Str("cron", w.opts.CronSpec).Int("group_size", w.opts.GroupSize).Msg("sweep worker started")

	<-ctx.Done()
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.log.Info().Msg("sweep worker stopped")
	return nil
}

// Sweep evaluates every user once, in groups of GroupSize with a pause
// between groups. A failing or panicking user is logged and skipped; the
// sweep always visits everyone else.
func (w *Worker) Sweep(ctx context.Context, now time.Time) {
	userIDs, err := w.store.Profiles().ListUserIDs(ctx)
	if err != nil {
		w.log.Error().Stack().Err(err).Msg("sweep: list users failed")
		return
	}

	for start := 0; start < len(userIDs); start += w.opts.GroupSize {
		if ctx.Err() != nil {
			return
		}
		end := start + w.opts.GroupSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		var wg sync.WaitGroup
		for _, userID := range userIDs[start:end] {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				w.sweepUser(ctx, userID, now)
			}(userID)
		}
		wg.Wait()

		if end < len(userIDs) && w.opts.Pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.opts.Pause):
			}
		}
	}
}

func (w *Worker) sweepUser(ctx context.Context, userID string, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Str("user", userID).Msg("sweep: user panicked, skipping")
		}
	}()

	userNow := w.userLocalTime(ctx, userID, now)
	notifications, err := w.eval.Evaluate(ctx, userID, userNow)
	if err != nil {
		w.log.Error().Stack().Err(err).Str("user", userID).Msg("sweep: evaluate failed")
		return
	}

	for _, n := range notifications {
		if w.sender != nil {
			if err := w.sender.Send(ctx, userID, n); err != nil {
				// fire-and-forget: log and still mark shown so it isn't re-sent
				w.log.Warn().Err(err).Str("user", userID).Str("notification", n.ID).Msg("sweep: push failed")
			}
		}
		if err := w.eval.MarkShown(ctx, userID, n.Type, n.ID, userNow); err != nil {
			w.log.Error().Stack().Err(err).Str("user", userID).Str("notification", n.ID).Msg("sweep: mark shown failed")
		}
	}

	if len(notifications) > 0 {
		w.log.Info().Str("user", userID).Int("count", len(notifications)).Msg("sweep: notifications delivered")
	}
}

// userLocalTime shifts the sweep time into the user's profile time zone so
// hour-window generators fire on their wall clock, not the server's.
func (w *Worker) userLocalTime(ctx context.Context, userID string, now time.Time) time.Time {
	profile, err := w.store.Profiles().Get(ctx, userID)
	if err != nil || profile.TimeZone == "" {
		return now
	}
	loc, err := time.LoadLocation(profile.TimeZone)
	if err != nil {
		return now
	}
	return now.In(loc)
}
