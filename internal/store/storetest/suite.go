package storetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique test identifiers
	userID := "u-" + uuid.New().String()

	// Profiles
	sleep := "23:00"
	p := &model.Profile{UserID: userID, DisplayName: "Suite", TimeZone: "UTC", Plan: model.PlanPro, SleepTime: &sleep}
	if _, err := s.Profiles().Put(ctx, p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}
	got, err := s.Profiles().Get(ctx, userID)
	if err != nil || got == nil || got.Plan != model.PlanPro || got.SleepTime == nil || *got.SleepTime != sleep {
		t.Fatalf("GetProfile: got=%+v err=%v", got, err)
	}
	if _, err := s.Profiles().Get(ctx, "missing-"+userID); err != model.ErrNotFound {
		t.Fatalf("GetProfile missing: want ErrNotFound, got %v", err)
	}
	ids, err := s.Profiles().ListUserIDs(ctx)
	if err != nil || len(ids) == 0 {
		t.Fatalf("ListUserIDs: n=%d err=%v", len(ids), err)
	}

	// Profile upsert overwrites mutable fields
	p.Plan = model.PlanMax
	if _, err := s.Profiles().Put(ctx, p); err != nil {
		t.Fatalf("PutProfile update: %v", err)
	}
	if got, err := s.Profiles().Get(ctx, userID); err != nil || got.Plan != model.PlanMax {
		t.Fatalf("GetProfile after update: got=%+v err=%v", got, err)
	}

	// Schedules: one-off and recurring
	start := "14:00"
	date := "2025-09-01"
	oneOff, err := s.Schedules().Create(ctx, &model.ScheduleEntry{
		UserID: userID, Text: "Book club", StartTime: &start, SpecificDate: &date,
	})
	if err != nil || oneOff.ID == "" {
		t.Fatalf("CreateSchedule one-off: %+v err=%v", oneOff, err)
	}
	recurring, err := s.Schedules().Create(ctx, &model.ScheduleEntry{
		UserID: userID, Text: "Gym", StartTime: &start, DaysOfWeek: []time.Weekday{time.Monday, time.Thursday},
	})
	if err != nil {
		t.Fatalf("CreateSchedule recurring: %v", err)
	}

	lst, err := s.Schedules().List(ctx, userID)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListSchedules: n=%d err=%v", len(lst), err)
	}
	var gotRecurring *model.ScheduleEntry
	for _, e := range lst {
		if e.ID == recurring.ID {
			gotRecurring = e
		}
	}
	if gotRecurring == nil || len(gotRecurring.DaysOfWeek) != 2 || gotRecurring.DaysOfWeek[0] != time.Monday {
		t.Fatalf("recurring days round-trip: %+v", gotRecurring)
	}

	// ListSince excludes one-offs before the cutoff but keeps recurring entries
	since, err := s.Schedules().ListSince(ctx, userID, "2025-12-01")
	if err != nil || len(since) != 1 || since[0].ID != recurring.ID {
		t.Fatalf("ListSince: n=%d err=%v", len(since), err)
	}
	since, err = s.Schedules().ListSince(ctx, userID, "2025-01-01")
	if err != nil || len(since) != 2 {
		t.Fatalf("ListSince wide: n=%d err=%v", len(since), err)
	}

	// DeleteByIDs
	if err := s.Schedules().DeleteByIDs(ctx, userID, []string{oneOff.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if lst, err := s.Schedules().List(ctx, userID); err != nil || len(lst) != 1 {
		t.Fatalf("ListSchedules after delete: n=%d err=%v", len(lst), err)
	}

	// Goals
	if _, err := s.Goals().Create(ctx, &model.Goal{UserID: userID, Text: "Read 12 books"}); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if _, err := s.Goals().Create(ctx, &model.Goal{UserID: userID, Text: "Done already", Completed: true}); err != nil {
		t.Fatalf("CreateGoal completed: %v", err)
	}
	open, err := s.Goals().ListOpen(ctx, userID)
	if err != nil || len(open) != 1 || open[0].Text != "Read 12 books" {
		t.Fatalf("ListOpen: n=%d err=%v", len(open), err)
	}

	// Lifecycle key→JSON upsert
	if _, err := s.Lifecycle().Get(ctx, userID, "dismissed"); err != model.ErrNotFound {
		t.Fatalf("Lifecycle.Get missing: want ErrNotFound, got %v", err)
	}
	doc := json.RawMessage(`{"ids":["a","b"]}`)
	if err := s.Lifecycle().Put(ctx, userID, "dismissed", doc); err != nil {
		t.Fatalf("Lifecycle.Put: %v", err)
	}
	raw, err := s.Lifecycle().Get(ctx, userID, "dismissed")
	if err != nil {
		t.Fatalf("Lifecycle.Get: %v", err)
	}
	var decoded struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded.IDs) != 2 {
		t.Fatalf("Lifecycle round-trip: %s err=%v", raw, err)
	}
	// Overwrite on same key
	if err := s.Lifecycle().Put(ctx, userID, "dismissed", json.RawMessage(`{"ids":["a","b","c"]}`)); err != nil {
		t.Fatalf("Lifecycle.Put overwrite: %v", err)
	}
	raw, err = s.Lifecycle().Get(ctx, userID, "dismissed")
	if err != nil {
		t.Fatalf("Lifecycle.Get after overwrite: %v", err)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded.IDs) != 3 {
		t.Fatalf("Lifecycle overwrite round-trip: %s err=%v", raw, err)
	}
}
