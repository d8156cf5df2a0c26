// Package health folds per-dependency checkers into the single flag the
// /api/health endpoint reports and service startup waits on.
package health

import "context"

// Pinger is implemented by dependencies that answer a direct liveness probe:
// the store adapters ping their database, the copywriter client its backend.
// A nil return means healthy.
type Pinger interface {
	HealthPing(ctx context.Context) error
}
