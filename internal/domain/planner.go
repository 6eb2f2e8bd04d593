package domain

import (
	"context"
	"math"
)

// DependencyPlanner computes a layered, dependency-respecting plan:
// added and changed apps start or restart in topological order with a
// capacity floor, restarts finish in reverse order once every consumer
// has begun consuming the new version, and removed apps stop last,
// after nothing left in the plan depends on them.
//
// An app with no dependency relation to any other changing app takes
// the fast path: its single action stands alone with no staging and no
// health floor.
type DependencyPlanner struct {
	// ScalePureResizes makes a changed app whose only difference is its
	// instance count emit a bare Scale at its ordering position instead
	// of the full restart. Off by default: a resize then replaces
	// instances like any other change.
	ScalePureResizes bool
}

func (p *DependencyPlanner) Plan(_ context.Context, delta StateDelta) (DeploymentPlan, error) {
	g := newChangeGraph(delta)
	if path := g.findCycle(); path != nil {
		return DeploymentPlan{}, &CycleError{Path: path}
	}

	n := len(g.ids)

	// Start layer: longest dependency path among changing apps. A
	// dependency must start (or begin restarting) no later than its
	// consumers.
	startLayer := make([]int, n)
	startDone := make([]bool, n)
	var startOf func(i int) int
	startOf = func(i int) int {
		if startDone[i] {
			return startLayer[i]
		}
		layer := 0
		for _, dep := range g.deps[i] {
			if l := startOf(dep) + 1; l > layer {
				layer = l
			}
		}
		startLayer[i] = layer
		startDone[i] = true
		return layer
	}

	// hasFinish marks apps with a pending finish phase: changed apps on
	// the phased path that end with the kill-old/scale pair.
	hasFinish := make([]bool, n)
	for i := range g.ids {
		if g.kinds[i] != changeChanged || g.degree(i) == 0 {
			continue
		}
		change := AppChange{Origin: g.origin[i], Target: g.target[i]}
		hasFinish[i] = !(p.ScalePureResizes && change.PureResize())
	}

	// Finish layer: mirrored over reverse edges. A dependency is not
	// torn down to its final capacity until every consumer's finish
	// phase has run.
	finishLayer := make([]int, n)
	finishDone := make([]bool, n)
	var finishOf func(i int) int
	finishOf = func(i int) int {
		if finishDone[i] {
			return finishLayer[i]
		}
		layer := 0
		for _, consumer := range g.rdeps[i] {
			if !hasFinish[consumer] {
				continue
			}
			if l := finishOf(consumer) + 1; l > layer {
				layer = l
			}
		}
		finishLayer[i] = layer
		finishDone[i] = true
		return layer
	}

	// Stop layer: a removed app stops only after every removed app that
	// depends on it has stopped.
	stopLayer := make([]int, n)
	stopDone := make([]bool, n)
	var stopOf func(i int) int
	stopOf = func(i int) int {
		if stopDone[i] {
			return stopLayer[i]
		}
		layer := 0
		for _, consumer := range g.rdeps[i] {
			if g.kinds[consumer] != changeRemoved {
				continue
			}
			if l := stopOf(consumer) + 1; l > layer {
				layer = l
			}
		}
		stopLayer[i] = layer
		stopDone[i] = true
		return layer
	}

	var start, finish, stop [][]DeploymentAction
	place := func(bucket *[][]DeploymentAction, layer int, actions ...DeploymentAction) {
		for len(*bucket) <= layer {
			*bucket = append(*bucket, nil)
		}
		(*bucket)[layer] = append((*bucket)[layer], actions...)
	}

	for i, id := range g.ids {
		switch g.kinds[i] {
		case changeAdded:
			place(&start, startOf(i), DeploymentAction{
				Kind:      ActionStart,
				App:       id,
				Instances: g.target[i].Instances,
			})

		case changeRemoved:
			place(&stop, stopOf(i), DeploymentAction{Kind: ActionStop, App: id})

		case changeChanged:
			change := AppChange{Origin: g.origin[i], Target: g.target[i]}

			if p.ScalePureResizes && change.PureResize() {
				place(&start, startOf(i), DeploymentAction{
					Kind:      ActionScale,
					App:       id,
					Instances: change.Target.Instances,
				})
				continue
			}

			if g.degree(i) == 0 {
				// Fast path: direct cutover, nothing sequences around it.
				place(&start, 0, DeploymentAction{
					Kind:      ActionRestart,
					App:       id,
					Instances: change.Target.Instances,
				})
				continue
			}

			// The target spec's policy governs the restart.
			health := change.Target.Upgrade.MinimumHealthCapacity
			place(&start, startOf(i), DeploymentAction{
				Kind:        ActionRestart,
				App:         id,
				Instances:   capacityFloor(change.Target.Instances, health),
				MinCapacity: capacityFloor(change.Origin.Instances, health),
			})
			place(&finish, finishOf(i),
				DeploymentAction{Kind: ActionKillOldTasks, App: id},
				DeploymentAction{Kind: ActionScale, App: id, Instances: change.Target.Instances},
			)
		}
	}

	var plan DeploymentPlan
	for _, phase := range [][][]DeploymentAction{start, finish, stop} {
		for _, actions := range phase {
			if len(actions) == 0 {
				continue
			}
			sortActions(actions)
			plan.Steps = append(plan.Steps, DeploymentStep{Actions: actions})
		}
	}
	return plan, nil
}

// capacityFloor rounds count*fraction up, so any positive fraction of a
// positive count keeps at least one instance.
func capacityFloor(count int, fraction float64) int {
	return int(math.Ceil(float64(count) * fraction))
}
