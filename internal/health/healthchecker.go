package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is one dependency's cached view of its own health. IsHealthy
// never blocks; the checker refreshes its state on its own Start loop.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker reduces the dependency checkers to the one flag the
// health endpoint and the startup gate consume: healthy only while every
// dependency is.
type ServiceHealthChecker struct {
	healthy  atomic.Int32
	checkers []HealthChecker
	log      zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, checkers ...HealthChecker) *ServiceHealthChecker {
	h := &ServiceHealthChecker{checkers: checkers, log: log}
	h.healthy.Store(0)
	return h
}

// IsHealthy returns the cached aggregate, without probing anything.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Start re-aggregates on the given interval until ctx is cancelled, logging
// which dependency is down and every up/down transition.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wasHealthy := false
	evaluate := func() {
		healthy := true
		for _, c := range h.checkers {
			if !c.IsHealthy() {
				healthy = false
				h.log.Warn().Str("dependency", c.Name()).Msg("dependency unhealthy")
			}
		}
		if healthy {
			h.healthy.Store(1)
		} else {
			h.healthy.Store(0)
		}
		if healthy != wasHealthy {
			if healthy {
				h.log.Info().Msg("service healthy")
			} else {
				h.log.Error().Msg("service unhealthy")
			}
			wasHealthy = healthy
		}
	}

	evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evaluate()
		}
	}
}
