package domain

import (
	"context"
	"fmt"
)

// LoadSnapshotsInput asks for the origin and target snapshots of a
// rollout.
type LoadSnapshotsInput struct {
	Origin SnapshotID
	Target SnapshotID
}

// SnapshotPair carries the two resolved state trees.
type SnapshotPair struct {
	Origin Group
	Target Group
}

// ComputePlanInput carries everything plan computation needs. The
// snapshots travel in the input so the activity stays a pure function
// of its arguments under replay.
type ComputePlanInput struct {
	Strategy PlanStrategySpec
	Origin   Group
	Target   Group
}

// ExecuteActionInput identifies one plan action to execute.
type ExecuteActionInput struct {
	RolloutID RolloutID
	Step      int
	Action    DeploymentAction
}

// RolloutWorkflow is the deployment pipeline: load the rollout, resolve
// its snapshots, compute the plan, persist it, execute the steps
// strictly in sequence, and mark the rollout applied.
//
// Actions within one step are declared concurrent-safe by the planner;
// the workflow still issues them one at a time so that durable engines
// replay deterministically. The step barrier holds either way: no
// action of step k+1 runs before every action of step k has returned.
type RolloutWorkflow struct {
	Rollouts   RolloutRepository
	States     StateRepository
	Strategies StrategyFactory
	Executor   ActionExecutor
}

func (w *RolloutWorkflow) Name() string { return "rollout" }

// LoadRollout loads the rollout being executed.
func (w *RolloutWorkflow) LoadRollout() Activity[RolloutID, Rollout] {
	return NewActivity("load-rollout", func(ctx context.Context, id RolloutID) (Rollout, error) {
		return w.Rollouts.Get(ctx, id)
	})
}

// LoadSnapshots loads the origin and target state trees.
func (w *RolloutWorkflow) LoadSnapshots() Activity[LoadSnapshotsInput, SnapshotPair] {
	return NewActivity("load-snapshots", func(ctx context.Context, in LoadSnapshotsInput) (SnapshotPair, error) {
		origin, err := w.States.Get(ctx, in.Origin)
		if err != nil {
			return SnapshotPair{}, fmt.Errorf("origin snapshot %q: %w", in.Origin, err)
		}
		target, err := w.States.Get(ctx, in.Target)
		if err != nil {
			return SnapshotPair{}, fmt.Errorf("target snapshot %q: %w", in.Target, err)
		}
		return SnapshotPair{Origin: origin.Root, Target: target.Root}, nil
	})
}

// ComputePlan diffs the snapshots and runs the plan strategy. Planning
// is pure; it runs as an activity so the plan is computed exactly once
// and replayed from history afterwards.
func (w *RolloutWorkflow) ComputePlan() Activity[ComputePlanInput, DeploymentPlan] {
	return NewActivity("compute-plan", func(ctx context.Context, in ComputePlanInput) (DeploymentPlan, error) {
		strategy, err := w.Strategies.PlanStrategy(in.Strategy)
		if err != nil {
			return DeploymentPlan{}, err
		}
		delta, err := ComputeDelta(in.Origin, in.Target)
		if err != nil {
			return DeploymentPlan{}, err
		}
		return strategy.Plan(ctx, delta)
	})
}

// ExecuteAction issues one plan action through the executor port.
func (w *RolloutWorkflow) ExecuteAction() Activity[ExecuteActionInput, ActionResult] {
	return NewActivity("execute-action", func(ctx context.Context, in ExecuteActionInput) (ActionResult, error) {
		return w.Executor.Execute(ctx, in.RolloutID, in.Step, in.Action)
	})
}

// UpdateRollout persists the rollout's plan and state.
func (w *RolloutWorkflow) UpdateRollout() Activity[Rollout, struct{}] {
	return NewActivity("update-rollout", func(ctx context.Context, r Rollout) (struct{}, error) {
		return struct{}{}, w.Rollouts.Update(ctx, r)
	})
}

// Run is the workflow body. It only invokes activities through the
// runner so every engine observes the same deterministic sequence.
func (w *RolloutWorkflow) Run(runner DurableRunner, id RolloutID) (struct{}, error) {
	rollout, err := RunActivity(runner, w.LoadRollout(), id)
	if err != nil {
		return struct{}{}, err
	}

	snapshots, err := RunActivity(runner, w.LoadSnapshots(), LoadSnapshotsInput{
		Origin: rollout.Origin,
		Target: rollout.Target,
	})
	if err != nil {
		return struct{}{}, w.fail(runner, rollout, err)
	}

	plan, err := RunActivity(runner, w.ComputePlan(), ComputePlanInput{
		Strategy: rollout.Strategy,
		Origin:   snapshots.Origin,
		Target:   snapshots.Target,
	})
	if err != nil {
		return struct{}{}, w.fail(runner, rollout, err)
	}

	rollout.Plan = plan
	rollout.State = RolloutStateApplying
	if _, err := RunActivity(runner, w.UpdateRollout(), rollout); err != nil {
		return struct{}{}, err
	}

	for i, step := range plan.Steps {
		for _, action := range step.Actions {
			_, err := RunActivity(runner, w.ExecuteAction(), ExecuteActionInput{
				RolloutID: rollout.ID,
				Step:      i,
				Action:    action,
			})
			if err != nil {
				return struct{}{}, w.fail(runner, rollout, fmt.Errorf("step %d, %s %s: %w", i, action.Kind, action.App, err))
			}
		}
	}

	rollout.State = RolloutStateApplied
	if _, err := RunActivity(runner, w.UpdateRollout(), rollout); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, nil
}

// fail marks the rollout failed, keeping the original error even if the
// state update itself fails.
func (w *RolloutWorkflow) fail(runner DurableRunner, rollout Rollout, cause error) error {
	rollout.State = RolloutStateFailed
	_, _ = RunActivity(runner, w.UpdateRollout(), rollout)
	return cause
}
