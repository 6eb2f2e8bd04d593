package application

import (
	"context"
	"fmt"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// CreateRolloutInput is the caller-provided input for creating a
// rollout.
type CreateRolloutInput struct {
	ID       domain.RolloutID
	Origin   domain.SnapshotID
	Target   domain.SnapshotID
	Strategy domain.PlanStrategySpec
}

// RolloutService manages rollout lifecycle and triggers execution.
type RolloutService struct {
	Rollouts  domain.RolloutRepository
	Records   domain.ActionRecordRepository
	Execution *ExecutionService
}

// Create persists a new rollout and runs the deployment pipeline. The
// returned rollout carries the computed plan and final state.
func (s *RolloutService) Create(ctx context.Context, in CreateRolloutInput) (domain.Rollout, error) {
	if in.ID == "" {
		return domain.Rollout{}, fmt.Errorf("%w: rollout ID is required", domain.ErrInvalidArgument)
	}
	if in.Origin == "" || in.Target == "" {
		return domain.Rollout{}, fmt.Errorf("%w: origin and target snapshot IDs are required", domain.ErrInvalidArgument)
	}

	rollout := domain.Rollout{
		ID:       in.ID,
		Origin:   in.Origin,
		Target:   in.Target,
		Strategy: in.Strategy,
		State:    domain.RolloutStatePending,
	}

	if err := s.Rollouts.Create(ctx, rollout); err != nil {
		return domain.Rollout{}, err
	}

	if err := s.Execution.Execute(ctx, rollout.ID); err != nil {
		return domain.Rollout{}, fmt.Errorf("execute rollout: %w", err)
	}

	return s.Rollouts.Get(ctx, rollout.ID)
}

// Get retrieves a rollout by ID.
func (s *RolloutService) Get(ctx context.Context, id domain.RolloutID) (domain.Rollout, error) {
	return s.Rollouts.Get(ctx, id)
}

// List returns all rollouts.
func (s *RolloutService) List(ctx context.Context) ([]domain.Rollout, error) {
	return s.Rollouts.List(ctx)
}

// Delete removes a rollout and its action records.
func (s *RolloutService) Delete(ctx context.Context, id domain.RolloutID) error {
	if err := s.Records.DeleteByRollout(ctx, id); err != nil {
		return fmt.Errorf("delete action records: %w", err)
	}
	return s.Rollouts.Delete(ctx, id)
}
