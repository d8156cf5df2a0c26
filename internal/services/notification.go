package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/loomplan-ai/loomplan-notify/internal/engine"
	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// NotificationService orchestrates one evaluation pass and the feedback
// operations that mutate lifecycle state. The engine itself never writes;
// every state change funnels through here.
type NotificationService struct {
	store     store.Store
	builder   *engine.SnapshotBuilder
	engine    *engine.Engine
	lifecycle *lifecycle.Manager
}

func NewNotificationService(s store.Store, b *engine.SnapshotBuilder, e *engine.Engine, lc *lifecycle.Manager) *NotificationService {
	return &NotificationService{store: s, builder: b, engine: e, lifecycle: lc}
}

// Evaluate runs the decision pipeline for one user at the given time and
// returns the notifications to surface. It does not mark anything shown;
// callers confirm delivery through MarkShown.
func (s *NotificationService) Evaluate(ctx context.Context, userID string, now time.Time) ([]model.Notification, error) {
	if userID == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId is required")
	}
	view, err := s.lifecycle.View(ctx, userID, now)
	if err != nil {
		return nil, errors.Wrap(err, "load lifecycle view")
	}
	snapshot := s.builder.Build(ctx, userID, now)
	out := s.engine.Evaluate(ctx, snapshot, view)
	if out == nil {
		out = []model.Notification{}
	}
	return out, nil
}

// Dismiss permanently suppresses a notification id and advances the type's
// dismiss streak.
func (s *NotificationService) Dismiss(ctx context.Context, userID, notificationID string, typ model.NotificationType, now time.Time) error {
	if userID == "" || notificationID == "" {
		return errors.Wrap(model.ErrValidation, "userId and notificationId are required")
	}
	if err := s.lifecycle.AddDismissed(ctx, userID, notificationID); err != nil {
		return errors.Wrap(err, "record dismissal")
	}
	if typ != "" {
		if err := s.lifecycle.BumpStreak(ctx, userID, typ, now, s.engine.Rules().SuppressionWindowDays); err != nil {
			return errors.Wrap(err, "bump dismiss streak")
		}
	}
	return nil
}

// DismissToday suppresses a whole notification type for the rest of the day
// and advances its dismiss streak.
func (s *NotificationService) DismissToday(ctx context.Context, userID string, typ model.NotificationType, now time.Time) error {
	if userID == "" || typ == "" {
		return errors.Wrap(model.ErrValidation, "userId and type are required")
	}
	if err := s.lifecycle.MarkTypeShown(ctx, userID, now, typ); err != nil {
		return errors.Wrap(err, "suppress type for today")
	}
	if err := s.lifecycle.BumpStreak(ctx, userID, typ, now, s.engine.Rules().SuppressionWindowDays); err != nil {
		return errors.Wrap(err, "bump dismiss streak")
	}
	return nil
}

// MarkShown confirms a notification reached the user, consuming daily quota.
func (s *NotificationService) MarkShown(ctx context.Context, userID string, typ model.NotificationType, notificationID string, now time.Time) error {
	if userID == "" || notificationID == "" {
		return errors.Wrap(model.ErrValidation, "userId and notificationId are required")
	}
	return s.lifecycle.MarkShown(ctx, userID, now, typ, notificationID)
}

// AcceptRequest carries the user's acceptance of an actionable notification.
type AcceptRequest struct {
	UserID         string
	NotificationID string
	Type           model.NotificationType
	ActionType     string
	ScheduleIDs    []string
	DaysOfWeek     []time.Weekday
	StartTime      string
	Text           string
}

// Accept records positive feedback: the type's dismiss streak resets, and a
// convert-to-recurring action merges the underlying one-off entries into one
// recurring schedule.
func (s *NotificationService) Accept(ctx context.Context, req AcceptRequest, now time.Time) error {
	if req.UserID == "" || req.NotificationID == "" {
		return errors.Wrap(model.ErrValidation, "userId and notificationId are required")
	}
	if req.Type != "" {
		if err := s.lifecycle.ResetStreak(ctx, req.UserID, req.Type); err != nil {
			return errors.Wrap(err, "reset dismiss streak")
		}
	}
	if req.ActionType != model.ActionConvertToRecurring {
		return nil
	}

	if req.Text == "" || len(req.DaysOfWeek) == 0 || req.StartTime == "" {
		return errors.Wrap(model.ErrValidation, "convert action requires text, daysOfWeek and startTime")
	}
	if _, err := time.Parse(model.ClockLayout, req.StartTime); err != nil {
		return errors.Wrapf(model.ErrValidation, "bad startTime %q", req.StartTime)
	}

	entry := &model.ScheduleEntry{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Text:       req.Text,
		StartTime:  &req.StartTime,
		DaysOfWeek: req.DaysOfWeek,
		CreatedAt:  now,
	}
	if _, err := s.store.Schedules().Create(ctx, entry); err != nil {
		return errors.Wrap(err, "create recurring schedule")
	}
	if len(req.ScheduleIDs) > 0 {
		if err := s.store.Schedules().DeleteByIDs(ctx, req.UserID, req.ScheduleIDs); err != nil {
			return errors.Wrap(err, "recurring schedule created but source entries not removed")
		}
	}
	return nil
}
