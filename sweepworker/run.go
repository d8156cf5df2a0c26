// Package sweepworker runs the scheduled evaluation sweep as a standalone
// process, sharing the store and engine wiring with the HTTP service.
package sweepworker

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/config"
	"github.com/loomplan-ai/loomplan-notify/internal/copywriter"
	"github.com/loomplan-ai/loomplan-notify/internal/engine"
	"github.com/loomplan-ai/loomplan-notify/internal/factory"
	"github.com/loomplan-ai/loomplan-notify/internal/fusion"
	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/logger"
	"github.com/loomplan-ai/loomplan-notify/internal/memoryclient"
	"github.com/loomplan-ai/loomplan-notify/internal/push"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
	"github.com/loomplan-ai/loomplan-notify/internal/sweep"
)

// Run starts the sweep worker and blocks until SIGINT/SIGTERM.
func Run() error {
	log := logger.New("sweep-worker")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	timeout := time.Duration(cfg.CollaboratorTimeoutSeconds) * time.Second

	var memory engine.MemoryReader
	if cfg.MemoryServiceURL != "" {
		memory = memoryclient.New(cfg.MemoryServiceURL, timeout)
	}
	var signals engine.SignalReader
	if cfg.FusionURL != "" {
		signals = fusion.New(cfg.FusionURL, timeout)
	}
	var phraser engine.Phraser
	if cfg.CopywriterURL != "" {
		phraser = copywriter.New(cfg.CopywriterURL, cfg.CopywriterModel, timeout)
	}
	var sender sweep.Sender
	if cfg.PushURL != "" {
		sender = push.New(cfg.PushURL, timeout)
	} else {
		log.Warn().Msg("no push gateway configured, sweeps will evaluate without delivering")
	}

	rules := engine.RulesFromConfig(cfg)
	builder := engine.NewSnapshotBuilder(st, memory, signals, rules, timeout, log)
	eng := engine.New(rules, phraser, log)
	lc := lifecycle.NewManager(st.Lifecycle())
	notifications := services.NewNotificationService(st, builder, eng, lc)

	worker := sweep.NewWorker(st, notifications, sender, sweep.Options{
		CronSpec:  cfg.SweepCronSpec,
		GroupSize: cfg.SweepGroupSize,
		Pause:     time.Duration(cfg.SweepPauseSeconds) * time.Second,
	}, log)

	return worker.Start(ctx)
}
