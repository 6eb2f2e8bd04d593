package domain

import "context"

// PlanStrategy turns a state delta into an ordered deployment plan.
//
// Plan is a pure function of the delta: deterministic, side-effect
// free, and reentrant. The platform executes the returned steps
// strictly in sequence; actions within one step are declared safe to
// run concurrently. What "complete" means for a step (tasks healthy,
// tasks running, timeout) is the executor's judgment, not the
// strategy's.
type PlanStrategy interface {
	Plan(ctx context.Context, delta StateDelta) (DeploymentPlan, error)
}
