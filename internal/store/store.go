package store

import (
	"context"
	"encoding/json"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Profiles() Profiles
	Schedules() Schedules
	Goals() Goals
	Lifecycle() Lifecycle
}

type Profiles interface {
	Put(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
	// ListUserIDs returns every known user id; used by the sweep worker.
	ListUserIDs(ctx context.Context) ([]string, error)
}

type Schedules interface {
	Create(ctx context.Context, s *model.ScheduleEntry) (*model.ScheduleEntry, error)
	List(ctx context.Context, userID string) ([]*model.ScheduleEntry, error)
	// ListSince returns every recurring entry plus one-off entries dated on or
	// after the given "2006-01-02" date key; the mining lookback window.
	ListSince(ctx context.Context, userID, fromDate string) ([]*model.ScheduleEntry, error)
	DeleteByIDs(ctx context.Context, userID string, ids []string) error
}

type Goals interface {
	Create(ctx context.Context, g *model.Goal) (*model.Goal, error)
	ListOpen(ctx context.Context, userID string) ([]*model.Goal, error)
}

// Lifecycle is the per-user key→JSON map backing dismissal, shown and streak
// records. Keys are logical ("dismissed", "shown:2025-09-01", "streaks");
// values are opaque JSON documents owned by the lifecycle manager.
type Lifecycle interface {
	Get(ctx context.Context, userID, key string) (json.RawMessage, error)
	Put(ctx context.Context, userID, key string, value json.RawMessage) error
}
