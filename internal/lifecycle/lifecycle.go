// Package lifecycle manages the persisted per-user notification state:
// permanently dismissed ids, day-scoped shown records, and per-type dismiss
// streaks. Records live in the store's key→JSON map and are created lazily on
// first write; stale day keys simply age out of relevance.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

const (
	keyDismissed = "dismissed"
	keyStreaks   = "streaks"
)

func shownKey(day time.Time) string { return "shown:" + model.DateKey(day) }

// View is the read model one evaluation consumes. The engine only reads it;
// all writes go through Manager from the feedback API.
type View struct {
	Dismissed  map[string]bool
	ShownTypes map[model.NotificationType]bool
	ShownIDs   map[string]bool
	ShownCount int
	Streaks    map[model.NotificationType]model.DismissStreak
}

// Manager reads and mutates lifecycle records. Writes are read-then-upsert per
// key without locking; concurrent evaluations for the same user are
// last-writer-wins (documented limitation).
type Manager struct {
	kv store.Lifecycle
}

func NewManager(kv store.Lifecycle) *Manager { return &Manager{kv: kv} }

type dismissedDoc struct {
	IDs []string `json:"ids"`
}

// View loads the lifecycle read model for one user and day.
func (m *Manager) View(ctx context.Context, userID string, day time.Time) (*View, error) {
	v := &View{
		Dismissed:  map[string]bool{},
		ShownTypes: map[model.NotificationType]bool{},
		ShownIDs:   map[string]bool{},
		Streaks:    map[model.NotificationType]model.DismissStreak{},
	}

	var dis dismissedDoc
	if err := m.read(ctx, userID, keyDismissed, &dis); err != nil {
		return nil, err
	}
	for _, id := range dis.IDs {
		v.Dismissed[id] = true
	}

	var shown model.ShownRecord
	if err := m.read(ctx, userID, shownKey(day), &shown); err != nil {
		return nil, err
	}
	for _, t := range shown.Types {
		v.ShownTypes[t] = true
	}
	for _, id := range shown.IDs {
		v.ShownIDs[id] = true
	}
	v.ShownCount = shown.Count

	if err := m.read(ctx, userID, keyStreaks, &v.Streaks); err != nil {
		return nil, err
	}
	return v, nil
}

// AddDismissed permanently suppresses a notification id.
func (m *Manager) AddDismissed(ctx context.Context, userID, id string) error {
	var doc dismissedDoc
	if err := m.read(ctx, userID, keyDismissed, &doc); err != nil {
		return err
	}
	for _, existing := range doc.IDs {
		if existing == id {
			return nil
		}
	}
	doc.IDs = append(doc.IDs, id)
	return m.write(ctx, userID, keyDismissed, doc)
}

// MarkShown records that a notification was surfaced today: the id always, the
// type additionally when it is a per-day singleton, and the quota counter.
func (m *Manager) MarkShown(ctx context.Context, userID string, day time.Time, typ model.NotificationType, id string) error {
	var rec model.ShownRecord
	if err := m.read(ctx, userID, shownKey(day), &rec); err != nil {
		return err
	}
	for _, existing := range rec.IDs {
		if existing == id {
			return nil // already counted for this day
		}
	}
	rec.IDs = append(rec.IDs, id)
	if typ.IsSingleton() {
		rec.Types = appendTypeOnce(rec.Types, typ)
	}
	rec.Count++
	return m.write(ctx, userID, shownKey(day), rec)
}

// MarkTypeShown suppresses an entire type for the rest of the day without
// touching the quota counter ("dismiss today").
func (m *Manager) MarkTypeShown(ctx context.Context, userID string, day time.Time, typ model.NotificationType) error {
	var rec model.ShownRecord
	if err := m.read(ctx, userID, shownKey(day), &rec); err != nil {
		return err
	}
	rec.Types = appendTypeOnce(rec.Types, typ)
	return m.write(ctx, userID, shownKey(day), rec)
}

// BumpStreak advances the dismiss streak for a type. At most one increment is
// counted per calendar day so repeat dismissals of the same candidate don't
// fast-forward escalation. A streak whose last dismissal fell more than
// windowDays ago has lapsed: this dismissal starts a fresh count of one
// instead of extending the stale one.
func (m *Manager) BumpStreak(ctx context.Context, userID string, typ model.NotificationType, day time.Time, windowDays int) error {
	streaks := map[model.NotificationType]model.DismissStreak{}
	if err := m.read(ctx, userID, keyStreaks, &streaks); err != nil {
		return err
	}
	s := streaks[typ]
	if s.LastDate == model.DateKey(day) {
		return nil
	}
	if streakLapsed(s.LastDate, day, windowDays) {
		s.Count = 0
	}
	s.Count++
	s.LastDate = model.DateKey(day)
	streaks[typ] = s
	return m.write(ctx, userID, keyStreaks, streaks)
}

// streakLapsed mirrors the engine's suppression-window arithmetic: the window
// closes after LastDate+windowDays, inclusive. An unparseable non-empty date
// counts as lapsed so corrupt state restarts rather than compounds.
func streakLapsed(lastDate string, day time.Time, windowDays int) bool {
	if lastDate == "" {
		return false
	}
	last, err := time.Parse(model.DateKeyLayout, lastDate)
	if err != nil {
		return true
	}
	return model.DateKey(day) > model.DateKey(last.AddDate(0, 0, windowDays))
}

// ResetStreak zeroes the dismiss streak for a type; called when the user
// accepts (acts on) a notification of that type.
func (m *Manager) ResetStreak(ctx context.Context, userID string, typ model.NotificationType) error {
	streaks := map[model.NotificationType]model.DismissStreak{}
	if err := m.read(ctx, userID, keyStreaks, &streaks); err != nil {
		return err
	}
	if _, ok := streaks[typ]; !ok {
		return nil
	}
	delete(streaks, typ)
	return m.write(ctx, userID, keyStreaks, streaks)
}

func (m *Manager) read(ctx context.Context, userID, key string, out interface{}) error {
	raw, err := m.kv.Get(ctx, userID, key)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (m *Manager) write(ctx context.Context, userID, key string, doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return m.kv.Put(ctx, userID, key, raw)
}

func appendTypeOnce(types []model.NotificationType, typ model.NotificationType) []model.NotificationType {
	for _, t := range types {
		if t == typ {
			return types
		}
	}
	return append(types, typ)
}
