package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Profiles() store.Profiles   { return &profiles{db: s.db} }
func (s *pgStore) Schedules() store.Schedules { return &schedules{db: s.db} }
func (s *pgStore) Goals() store.Goals         { return &goals{db: s.db} }
func (s *pgStore) Lifecycle() store.Lifecycle { return &lifecycle{db: s.db} }

// HealthPing implements health.Pinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
// Schema setup is handled by deployment migrations, so this is ping-only.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil // No DSN configured, skip bootstrap
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (p *profiles) Put(ctx context.Context, m *model.Profile) (*model.Profile, error) {
	out := *m
	if out.Plan == "" {
		out.Plan = model.PlanFree
	}
	var created time.Time
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO profiles (user_id, display_name, time_zone, plan, sleep_time)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id) DO UPDATE SET
            display_name=EXCLUDED.display_name,
            time_zone=EXCLUDED.time_zone,
            plan=EXCLUDED.plan,
            sleep_time=EXCLUDED.sleep_time
        RETURNING creation_time
    `, out.UserID, out.DisplayName, out.TimeZone, string(out.Plan), out.SleepTime)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var out model.Profile
	var plan string
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, display_name, time_zone, plan, sleep_time, creation_time
        FROM profiles WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.DisplayName, &out.TimeZone, &plan, &out.SleepTime, &out.CreationTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	out.Plan = model.Plan(plan)
	return &out, nil
}

func (p *profiles) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT user_id FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Schedules ---

type schedules struct{ db *sql.DB }

func (s *schedules) Create(ctx context.Context, e *model.ScheduleEntry) (*model.ScheduleEntry, error) {
	out := *e
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	var days interface{}
	if len(out.DaysOfWeek) > 0 {
		b, err := json.Marshal(out.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		days = string(b)
	}
	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO schedules (user_id, schedule_id, text, start_time, end_time, specific_date, days_of_week, completed, color)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING creation_time
    `, out.UserID, out.ID, out.Text, out.StartTime, out.EndTime, out.SpecificDate, days, out.Completed, out.Color)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreatedAt = created
	return &out, nil
}

const scheduleColumns = `schedule_id, user_id, text, start_time, end_time, specific_date, days_of_week, completed, color, creation_time`

func (s *schedules) List(ctx context.Context, userID string) ([]*model.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE user_id=$1 ORDER BY creation_time ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (s *schedules) ListSince(ctx context.Context, userID, fromDate string) ([]*model.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+scheduleColumns+` FROM schedules
        WHERE user_id=$1 AND (specific_date IS NULL OR specific_date >= $2)
        ORDER BY creation_time ASC
    `, userID, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (s *schedules) DeleteByIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE user_id=$1 AND schedule_id=$2`, userID, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanSchedules(rows *sql.Rows) ([]*model.ScheduleEntry, error) {
	var out []*model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		var days *string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.StartTime, &e.EndTime, &e.SpecificDate, &days, &e.Completed, &e.Color, &e.CreatedAt); err != nil {
			return nil, err
		}
		if days != nil && *days != "" {
			if err := json.Unmarshal([]byte(*days), &e.DaysOfWeek); err != nil {
				return nil, err
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// --- Goals ---

type goals struct{ db *sql.DB }

func (g *goals) Create(ctx context.Context, m *model.Goal) (*model.Goal, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	var created time.Time
	row := g.db.QueryRowContext(ctx, `
        INSERT INTO goals (user_id, goal_id, text, completed, target_date, done_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, out.UserID, out.ID, out.Text, out.Completed, out.TargetDate, out.DoneAt)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreatedAt = created
	return &out, nil
}

func (g *goals) ListOpen(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := g.db.QueryContext(ctx, `
        SELECT goal_id, user_id, text, completed, target_date, done_at, creation_time
        FROM goals WHERE user_id=$1 AND completed=false
        ORDER BY creation_time ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Goal
	for rows.Next() {
		var m model.Goal
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.Completed, &m.TargetDate, &m.DoneAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Lifecycle ---

type lifecycle struct{ db *sql.DB }

func (l *lifecycle) Get(ctx context.Context, userID, key string) (json.RawMessage, error) {
	var value []byte
	row := l.db.QueryRowContext(ctx, `SELECT value FROM lifecycle WHERE user_id=$1 AND key=$2`, userID, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (l *lifecycle) Put(ctx context.Context, userID, key string, value json.RawMessage) error {
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO lifecycle (user_id, key, value, update_time)
        VALUES ($1,$2,$3,now())
        ON CONFLICT (user_id, key) DO UPDATE SET value=EXCLUDED.value, update_time=now()
    `, userID, key, []byte(value))
	return err
}
