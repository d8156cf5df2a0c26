package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// ScheduleService manages schedule entries.
type ScheduleService struct {
	store store.Store
}

func NewScheduleService(s store.Store) *ScheduleService {
	return &ScheduleService{store: s}
}

// Create validates and persists one entry. An entry is either one-off (has a
// specific date) or recurring (has weekdays), never both.
func (s *ScheduleService) Create(ctx context.Context, e *model.ScheduleEntry) (*model.ScheduleEntry, error) {
	if e.UserID == "" || e.Text == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId and text are required")
	}
	oneOff := e.SpecificDate != nil
	recurring := len(e.DaysOfWeek) > 0
	if oneOff == recurring {
		return nil, errors.Wrap(model.ErrValidation, "exactly one of specificDate or daysOfWeek is required")
	}
	if oneOff {
		if _, err := time.Parse(model.DateKeyLayout, *e.SpecificDate); err != nil {
			return nil, errors.Wrapf(model.ErrValidation, "bad specificDate %q", *e.SpecificDate)
		}
	}
	for _, wd := range e.DaysOfWeek {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, errors.Wrapf(model.ErrValidation, "bad weekday %d", wd)
		}
	}
	if e.StartTime != nil {
		if _, err := time.Parse(model.ClockLayout, *e.StartTime); err != nil {
			return nil, errors.Wrapf(model.ErrValidation, "bad startTime %q", *e.StartTime)
		}
	}
	if e.EndTime != nil {
		if _, err := time.Parse(model.ClockLayout, *e.EndTime); err != nil {
			return nil, errors.Wrapf(model.ErrValidation, "bad endTime %q", *e.EndTime)
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return s.store.Schedules().Create(ctx, e)
}

// List returns every entry for the user.
func (s *ScheduleService) List(ctx context.Context, userID string) ([]*model.ScheduleEntry, error) {
	if userID == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId is required")
	}
	return s.store.Schedules().List(ctx, userID)
}
