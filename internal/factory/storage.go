// Package factory constructs configured adapters (storage drivers) for the
// service entrypoints.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/loomplan-ai/loomplan-notify/internal/config"
	storepkg "github.com/loomplan-ai/loomplan-notify/internal/store"
	storepg "github.com/loomplan-ai/loomplan-notify/internal/store/postgres"
	storelite "github.com/loomplan-ai/loomplan-notify/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver.
// Postgres opens the connection synchronously (health checks need it
// immediately) and runs an async bootstrap check; SQLite creates the schema
// inline.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		st, err := storelite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store at %s: %w", cfg.SQLitePath, err)
		}
		log.Debug().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return st, nil

	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("LOOMPLAN_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, err
		}

		// Async bootstrap check; don't block startup.
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := storepg.Bootstrap(bootstrapCtx, dsn); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap check failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap check completed")
			}
		}()
		return storepg.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
