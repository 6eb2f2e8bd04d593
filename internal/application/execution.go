package application

import (
	"context"
	"fmt"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// ExecutionService runs the deployment pipeline as a durable workflow.
type ExecutionService struct {
	Workflow domain.RolloutRunner
}

// Execute starts the rollout workflow and waits for it to complete.
func (s *ExecutionService) Execute(ctx context.Context, rolloutID domain.RolloutID) error {
	handle, err := s.Workflow.Run(ctx, rolloutID)
	if err != nil {
		return fmt.Errorf("start rollout workflow: %w", err)
	}
	_, err = handle.AwaitResult(ctx)
	return err
}
