// Package notifyservice assembles and runs the notification decision HTTP
// service.
package notifyservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/loomplan-ai/loomplan-notify/internal/api"
	"github.com/loomplan-ai/loomplan-notify/internal/config"
	"github.com/loomplan-ai/loomplan-notify/internal/copywriter"
	"github.com/loomplan-ai/loomplan-notify/internal/engine"
	"github.com/loomplan-ai/loomplan-notify/internal/factory"
	"github.com/loomplan-ai/loomplan-notify/internal/fusion"
	"github.com/loomplan-ai/loomplan-notify/internal/health"
	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/logger"
	"github.com/loomplan-ai/loomplan-notify/internal/memoryclient"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// Run starts the notification service HTTP server and blocks until shutdown
// or error.
func Run() error {
	log := logger.New("notify-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("memory_service_url", cfg.MemoryServiceURL).
		Str("copywriter_url", cfg.CopywriterURL).
		Msg("Notification service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	deps := buildDeps(cfg, st, log)
	router := api.NewRouter(deps)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildDeps wires collaborators, the engine and the service layer. Every
// collaborator is optional; an empty URL leaves it nil and the engine
// degrades to its template copy and schedule-only generators.
func buildDeps(cfg *config.Config, st store.Store, log zerolog.Logger) api.Deps {
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

	rules := engine.RulesFromConfig(cfg)
	builder := engine.NewSnapshotBuilder(st, memory, signals, rules, timeout, log)
	eng := engine.New(rules, phraser, log)
	lc := lifecycle.NewManager(st.Lifecycle())

	return api.Deps{
		Notifications: services.NewNotificationService(st, builder, eng, lc),
		Profiles:      services.NewProfileService(st),
		Schedules:     services.NewScheduleService(st),
		Goals:         services.NewGoalService(st),
	}
}

// startHealthCheckers starts the store checker and the service-level
// aggregator, and binds /api/health. The copywriter is deliberately not
// aggregated: the engine degrades without it, so it must not gate startup.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
