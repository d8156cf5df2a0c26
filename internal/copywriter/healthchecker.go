package copywriter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/loomplan-ai/loomplan-notify/internal/health"
)

// ProviderHealthChecker monitors the copywriter backend. The engine degrades
// to template copy when the backend is down, so this checker reports health
// for observability without gating evaluation.
type ProviderHealthChecker struct {
	provider     health.Pinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewProviderHealthChecker(p health.Pinger, log zerolog.Logger, probeTimeout time.Duration) *ProviderHealthChecker {
	hc := &ProviderHealthChecker{provider: p, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0)
	return hc
}

func (hc *ProviderHealthChecker) Name() string { return "copywriter" }

func (hc *ProviderHealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

func (hc *ProviderHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := hc.provider.HealthPing(checkCtx); err != nil {
			hc.log.Error().Stack().
				Str("checker", hc.Name()).
				Err(err).
				Msg("copywriter health check failed")
			hc.healthy.Store(0)
			return
		}
		hc.healthy.Store(1)
	}

	check()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
