package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// ProfileService manages user profiles.
type ProfileService struct {
	store store.Store
}

func NewProfileService(s store.Store) *ProfileService {
	return &ProfileService{store: s}
}

// Put creates or replaces a profile. The plan defaults to free and the time
// zone must be a valid IANA name when set.
func (s *ProfileService) Put(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if p.UserID == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId is required")
	}
	if p.Plan == "" {
		p.Plan = model.PlanFree
	}
	switch p.Plan {
	case model.PlanFree, model.PlanPro, model.PlanMax:
	default:
		return nil, errors.Wrapf(model.ErrValidation, "unknown plan %q", p.Plan)
	}
	if p.TimeZone != "" {
		if _, err := time.LoadLocation(p.TimeZone); err != nil {
			return nil, errors.Wrapf(model.ErrValidation, "bad timeZone %q", p.TimeZone)
		}
	}
	if p.SleepTime != nil {
		if _, err := time.Parse(model.ClockLayout, *p.SleepTime); err != nil {
			return nil, errors.Wrapf(model.ErrValidation, "bad sleepTime %q", *p.SleepTime)
		}
	}
	return s.store.Profiles().Put(ctx, p)
}

// Get fetches a profile by user id.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId is required")
	}
	return s.store.Profiles().Get(ctx, userID)
}
