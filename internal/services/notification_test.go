package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/loomplan-ai/loomplan-notify/internal/engine"
	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// --- Fakes ---

type fakeStore struct {
	profiles  map[string]*model.Profile
	schedules []*model.ScheduleEntry
	goals     []*model.Goal
	kv        map[string]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]*model.Profile{},
		kv:       map[string]json.RawMessage{},
	}
}

func (f *fakeStore) Profiles() store.Profiles   { return &fakeProfiles{f} }
func (f *fakeStore) Schedules() store.Schedules { return &fakeSchedules{f} }
func (f *fakeStore) Goals() store.Goals         { return &fakeGoals{f} }
func (f *fakeStore) Lifecycle() store.Lifecycle { return &fakeLifecycle{f} }

type fakeProfiles struct{ p *fakeStore }

func (f *fakeProfiles) Put(_ context.Context, p *model.Profile) (*model.Profile, error) {
	f.p.profiles[p.UserID] = p
	return p, nil
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*model.Profile, error) {
	p, ok := f.p.profiles[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) ListUserIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.p.profiles))
	for id := range f.p.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeSchedules struct{ p *fakeStore }

func (f *fakeSchedules) Create(_ context.Context, s *model.ScheduleEntry) (*model.ScheduleEntry, error) {
	f.p.schedules = append(f.p.schedules, s)
	return s, nil
}

func (f *fakeSchedules) List(_ context.Context, userID string) ([]*model.ScheduleEntry, error) {
	var out []*model.ScheduleEntry
	for _, s := range f.p.schedules {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchedules) ListSince(_ context.Context, userID, fromDate string) ([]*model.ScheduleEntry, error) {
	var out []*model.ScheduleEntry
	for _, s := range f.p.schedules {
		if s.UserID != userID {
			continue
		}
		if s.SpecificDate != nil && *s.SpecificDate < fromDate {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSchedules) DeleteByIDs(_ context.Context, userID string, ids []string) error {
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.p.schedules[:0]
	for _, s := range f.p.schedules {
		if s.UserID == userID && drop[s.ID] {
			continue
		}
		kept = append(kept, s)
	}
	f.p.schedules = kept
	return nil
}

type fakeGoals struct{ p *fakeStore }

func (f *fakeGoals) Create(_ context.Context, g *model.Goal) (*model.Goal, error) {
	f.p.goals = append(f.p.goals, g)
	return g, nil
}

func (f *fakeGoals) ListOpen(_ context.Context, userID string) ([]*model.Goal, error) {
	var out []*model.Goal
	for _, g := range f.p.goals {
		if g.UserID == userID && !g.Completed {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeLifecycle struct{ p *fakeStore }

func (f *fakeLifecycle) Get(_ context.Context, userID, key string) (json.RawMessage, error) {
	raw, ok := f.p.kv[userID+"/"+key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return raw, nil
}

func (f *fakeLifecycle) Put(_ context.Context, userID, key string, value json.RawMessage) error {
	f.p.kv[userID+"/"+key] = value
	return nil
}

// --- Helpers ---

func newNotificationService(fs *fakeStore) *NotificationService {
	rules := engine.DefaultRules()
	log := zerolog.Nop()
	builder := engine.NewSnapshotBuilder(fs, nil, nil, rules, time.Second, log)
	eng := engine.New(rules, nil, log)
	return NewNotificationService(fs, builder, eng, lifecycle.NewManager(fs.Lifecycle()))
}

func strPtr(s string) *string { return &s }

// mondayAt returns 2025-03-10 (a Monday) at the given wall clock.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

// --- Tests ---

func TestEvaluate_EndToEnd(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.schedules = append(fs.schedules, &model.ScheduleEntry{
		ID:           "s1",
		UserID:       "u1",
		Text:         "Board meeting",
		SpecificDate: strPtr("2025-03-10"),
		StartTime:    strPtr("08:10"),
	})

	svc := newNotificationService(fs)
	out, err := svc.Evaluate(context.Background(), "u1", mondayAt(8, 0))
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, model.TypeScheduleReminder, out[0].Type)
}

func TestEvaluate_EmptyResultIsNotNil(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}

	svc := newNotificationService(fs)
	out, err := svc.Evaluate(context.Background(), "u1", mondayAt(11, 0))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestDismiss_SuppressesAcrossEvaluations(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.schedules = append(fs.schedules, &model.ScheduleEntry{
		ID:           "s1",
		UserID:       "u1",
		Text:         "Board meeting",
		SpecificDate: strPtr("2025-03-10"),
		StartTime:    strPtr("08:10"),
	})

	svc := newNotificationService(fs)
	now := mondayAt(8, 0)

	first, err := svc.Evaluate(context.Background(), "u1", now)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, svc.Dismiss(context.Background(), "u1", first[0].ID, first[0].Type, now))

	second, err := svc.Evaluate(context.Background(), "u1", now)
	require.NoError(t, err)
	for _, n := range second {
		require.NotEqual(t, first[0].ID, n.ID)
	}
}

func TestDismiss_ThreeStrikesSuppressType(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.goals = append(fs.goals, &model.Goal{
		ID:        "g1",
		UserID:    "u1",
		Text:      "Learn Spanish",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	svc := newNotificationService(fs)

	// dismiss the goal nudge on three consecutive days
	for day := 0; day < 3; day++ {
		now := mondayAt(12, 0).AddDate(0, 0, day)
		out, err := svc.Evaluate(context.Background(), "u1", now)
		require.NoError(t, err)
		require.NotEmpty(t, out, "day %d should still surface the nudge", day)
		require.NoError(t, svc.Dismiss(context.Background(), "u1", out[0].ID, out[0].Type, now))
	}

	// day 4: the type is suppressed outright
	out, err := svc.Evaluate(context.Background(), "u1", mondayAt(12, 0).AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Empty(t, out)

	// well past the suppression window it resurfaces
	out, err = svc.Evaluate(context.Background(), "u1", mondayAt(12, 0).AddDate(0, 0, 12))
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestDismiss_SingleDismissalAfterLapseDoesNotSuppress(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.goals = append(fs.goals, &model.Goal{
		ID:        "g1",
		UserID:    "u1",
		Text:      "Learn Spanish",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	svc := newNotificationService(fs)

	// an old three-strike streak, fully lapsed by day 14
	for day := 0; day < 3; day++ {
		now := mondayAt(12, 0).AddDate(0, 0, day)
		out, err := svc.Evaluate(context.Background(), "u1", now)
		require.NoError(t, err)
		require.NotEmpty(t, out)
		require.NoError(t, svc.Dismiss(context.Background(), "u1", out[0].ID, out[0].Type, now))
	}

	// the nudge is back, and one dismissal starts a fresh streak of one
	now := mondayAt(12, 0).AddDate(0, 0, 14)
	out, err := svc.Evaluate(context.Background(), "u1", now)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.NoError(t, svc.Dismiss(context.Background(), "u1", out[0].ID, out[0].Type, now))

	// next day it surfaces again instead of re-entering suppression
	out, err = svc.Evaluate(context.Background(), "u1", now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, model.TypeGoalNudge, out[0].Type)
}

func TestDismissToday_SuppressesTypeForDayOnly(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.goals = append(fs.goals, &model.Goal{
		ID:        "g1",
		UserID:    "u1",
		Text:      "Learn Spanish",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	svc := newNotificationService(fs)
	now := mondayAt(12, 0)

	require.NoError(t, svc.DismissToday(context.Background(), "u1", model.TypeGoalNudge, now))

	out, err := svc.Evaluate(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Empty(t, out)

	// next day the nudge is back
	out, err = svc.Evaluate(context.Background(), "u1", now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestMarkShown_ConsumesQuota(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}

	svc := newNotificationService(fs)
	now := mondayAt(12, 0)

	// burn the free plan's whole daily budget
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		require.NoError(t, svc.MarkShown(context.Background(), "u1", model.TypeGoalNudge, id, now))
	}

	fs.goals = append(fs.goals, &model.Goal{
		ID:        "g1",
		UserID:    "u1",
		Text:      "Learn Spanish",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	out, err := svc.Evaluate(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Empty(t, out, "exhausted quota must block further notifications")
}

func TestAccept_ConvertToRecurringMergesEntries(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.schedules = append(fs.schedules,
		&model.ScheduleEntry{ID: "s1", UserID: "u1", Text: "Book club", SpecificDate: strPtr("2025-02-24"), StartTime: strPtr("19:00")},
		&model.ScheduleEntry{ID: "s2", UserID: "u1", Text: "Book club", SpecificDate: strPtr("2025-03-03"), StartTime: strPtr("19:20")},
	)

	svc := newNotificationService(fs)
	now := mondayAt(12, 0)

	err := svc.Accept(context.Background(), AcceptRequest{
		UserID:         "u1",
		NotificationID: "recurring_suggestion:book club:1:2025-03-10",
		Type:           model.TypeRecurringSuggestion,
		ActionType:     model.ActionConvertToRecurring,
		ScheduleIDs:    []string{"s1", "s2"},
		DaysOfWeek:     []time.Weekday{time.Monday},
		StartTime:      "19:20",
		Text:           "book club",
	}, now)
	require.NoError(t, err)

	require.Len(t, fs.schedules, 1)
	merged := fs.schedules[0]
	require.True(t, merged.IsRecurring())
	require.Equal(t, []time.Weekday{time.Monday}, merged.DaysOfWeek)
	require.Equal(t, "19:20", *merged.StartTime)
	require.Equal(t, "book club", merged.Text)
}

func TestAccept_ResetsStreak(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["u1"] = &model.Profile{UserID: "u1", Plan: model.PlanFree}
	fs.goals = append(fs.goals, &model.Goal{
		ID:        "g1",
		UserID:    "u1",
		Text:      "Learn Spanish",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	svc := newNotificationService(fs)

	// two dismissals put the streak one short of suppression
	for day := 0; day < 2; day++ {
		now := mondayAt(12, 0).AddDate(0, 0, day)
		out, err := svc.Evaluate(context.Background(), "u1", now)
		require.NoError(t, err)
		require.NotEmpty(t, out)
		require.NoError(t, svc.Dismiss(context.Background(), "u1", out[0].ID, out[0].Type, now))
	}

	// acceptance wipes the streak
	require.NoError(t, svc.Accept(context.Background(), AcceptRequest{
		UserID:         "u1",
		NotificationID: "whatever",
		Type:           model.TypeGoalNudge,
	}, mondayAt(12, 0).AddDate(0, 0, 2)))

	// three more dismissals are needed again before suppression
	now := mondayAt(12, 0).AddDate(0, 0, 3)
	out, err := svc.Evaluate(context.Background(), "u1", now)
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestAccept_ConvertValidation(t *testing.T) {
	fs := newFakeStore()
	svc := newNotificationService(fs)

	err := svc.Accept(context.Background(), AcceptRequest{
		UserID:         "u1",
		NotificationID: "n1",
		ActionType:     model.ActionConvertToRecurring,
		// missing text/daysOfWeek/startTime
	}, mondayAt(12, 0))
	require.ErrorIs(t, err, model.ErrValidation)
}
