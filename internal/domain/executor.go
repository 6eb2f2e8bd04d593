package domain

import (
	"context"
	"time"
)

// ActionState indicates the outcome of executing one action.
type ActionState string

const (
	ActionStatePending  ActionState = "pending"
	ActionStateExecuted ActionState = "executed"
	ActionStateFailed   ActionState = "failed"
)

// ActionRecord captures the execution of one plan action.
type ActionRecord struct {
	RolloutID RolloutID
	App       AppID
	Kind      ActionKind
	Step      int
	State     ActionState
	UpdatedAt time.Time
}

// ActionResult is the outcome of a single action execution.
type ActionResult struct {
	State ActionState
}

// ActionExecutor is the port through which the rollout pipeline issues
// plan actions against the runtime. The real implementation launches
// and kills tasks, enforces the live over-capacity bound, and judges
// health; the initial implementation records actions in the database.
// Returning without error is the executor's completion signal for the
// action; the pipeline advances to the next step only once every action
// of the current step has returned.
type ActionExecutor interface {
	Execute(ctx context.Context, rolloutID RolloutID, step int, action DeploymentAction) (ActionResult, error)
}
