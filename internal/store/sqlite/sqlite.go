package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// New opens a SQLite-backed store at path, creating the schema when missing.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store over an existing connection (used by factory and tests).
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Profiles() store.Profiles   { return &profiles{db: s.db} }
func (s *liteStore) Schedules() store.Schedules { return &schedules{db: s.db} }
func (s *liteStore) Goals() store.Goals         { return &goals{db: s.db} }
func (s *liteStore) Lifecycle() store.Lifecycle { return &lifecycle{db: s.db} }

// HealthPing implements health.Pinger for the SQLite-backed store.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (p *profiles) Put(ctx context.Context, m *model.Profile) (*model.Profile, error) {
	out := *m
	if out.Plan == "" {
		out.Plan = model.PlanFree
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO Profiles (UserId, DisplayName, TimeZone, Plan, SleepTime, CreationTime)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(UserId) DO UPDATE SET
            DisplayName=excluded.DisplayName,
            TimeZone=excluded.TimeZone,
            Plan=excluded.Plan,
            SleepTime=excluded.SleepTime
    `, out.UserID, out.DisplayName, out.TimeZone, string(out.Plan), out.SleepTime, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var out model.Profile
	var plan string
	row := p.db.QueryRowContext(ctx, `
        SELECT UserId, DisplayName, TimeZone, Plan, SleepTime, CreationTime
        FROM Profiles WHERE UserId = ?
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
	rows, err := p.db.QueryContext(ctx, `SELECT UserId FROM Profiles ORDER BY UserId`)
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
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	var days *string
	if len(out.DaysOfWeek) > 0 {
		b, err := json.Marshal(out.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		str := string(b)
		days = &str
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO Schedules (UserId, ScheduleId, Text, StartTime, EndTime, SpecificDate, DaysOfWeek, Completed, Color, CreationTime)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, out.UserID, out.ID, out.Text, out.StartTime, out.EndTime, out.SpecificDate, days, out.Completed, out.Color, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const scheduleColumns = `ScheduleId, UserId, Text, StartTime, EndTime, SpecificDate, DaysOfWeek, Completed, Color, CreationTime`

func (s *schedules) List(ctx context.Context, userID string) ([]*model.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM Schedules WHERE UserId = ? ORDER BY CreationTime ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (s *schedules) ListSince(ctx context.Context, userID, fromDate string) ([]*model.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+scheduleColumns+` FROM Schedules
        WHERE UserId = ? AND (SpecificDate IS NULL OR SpecificDate >= ?)
        ORDER BY CreationTime ASC
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
		if _, err := tx.ExecContext(ctx, `DELETE FROM Schedules WHERE UserId = ? AND ScheduleId = ?`, userID, id); err != nil {
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
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	_, err := g.db.ExecContext(ctx, `
        INSERT INTO Goals (UserId, GoalId, Text, Completed, TargetDate, DoneAt, CreationTime)
        VALUES (?,?,?,?,?,?,?)
    `, out.UserID, out.ID, out.Text, out.Completed, out.TargetDate, out.DoneAt, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *goals) ListOpen(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := g.db.QueryContext(ctx, `
        SELECT GoalId, UserId, Text, Completed, TargetDate, DoneAt, CreationTime
        FROM Goals WHERE UserId = ? AND Completed = 0
        ORDER BY CreationTime ASC
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
	var value string
	row := l.db.QueryRowContext(ctx, `SELECT Value FROM Lifecycle WHERE UserId = ? AND Key = ?`, userID, key)
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
        INSERT INTO Lifecycle (UserId, Key, Value, UpdateTime)
        VALUES (?,?,?,?)
        ON CONFLICT(UserId, Key) DO UPDATE SET Value=excluded.Value, UpdateTime=excluded.UpdateTime
    `, userID, key, string(value), time.Now().UTC())
	return err
}
