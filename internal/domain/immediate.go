package domain

import "context"

// ImmediatePlanner emits at most two steps regardless of declared
// dependencies: one step stopping every removed app, then one step
// starting, scaling, and cutting over everything else concurrently.
// It is the opt-out for operators who accept unordered rollouts; the
// ordering guarantees of [DependencyPlanner] do not apply.
type ImmediatePlanner struct{}

func (p *ImmediatePlanner) Plan(_ context.Context, delta StateDelta) (DeploymentPlan, error) {
	var stops []DeploymentAction
	for _, app := range delta.Removed {
		stops = append(stops, DeploymentAction{Kind: ActionStop, App: app.ID})
	}

	var launches []DeploymentAction
	for _, app := range delta.Added {
		launches = append(launches, DeploymentAction{
			Kind:      ActionStart,
			App:       app.ID,
			Instances: app.Instances,
		})
	}
	for _, change := range delta.Changed {
		launches = append(launches, DeploymentAction{
			Kind:      ActionRestart,
			App:       change.Target.ID,
			Instances: change.Target.Instances,
		})
	}

	var plan DeploymentPlan
	if len(stops) > 0 {
		sortActions(stops)
		plan.Steps = append(plan.Steps, DeploymentStep{Actions: stops})
	}
	if len(launches) > 0 {
		sortActions(launches)
		plan.Steps = append(plan.Steps, DeploymentStep{Actions: launches})
	}
	return plan, nil
}
