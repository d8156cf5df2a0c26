package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/store"
)

// GoalService manages user goals.
type GoalService struct {
	store store.Store
}

func NewGoalService(s store.Store) *GoalService {
	return &GoalService{store: s}
}

// Create validates and persists one goal.
func (s *GoalService) Create(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	if g.UserID == "" || g.Text == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId and text are required")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return s.store.Goals().Create(ctx, g)
}

// ListOpen returns the user's open (not completed) goals.
func (s *GoalService) ListOpen(ctx context.Context, userID string) ([]*model.Goal, error) {
	if userID == "" {
		return nil, errors.Wrap(model.ErrValidation, "userId is required")
	}
	return s.store.Goals().ListOpen(ctx, userID)
}
