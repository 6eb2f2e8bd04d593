package domain

// PlanStrategyType identifies the kind of plan strategy.
type PlanStrategyType string

const (
	// PlanStrategyDependency is the layered, dependency-respecting
	// planner. The default.
	PlanStrategyDependency PlanStrategyType = "dependency"
	// PlanStrategyImmediate ignores dependency ordering: removals in
	// one step, everything else in the next.
	PlanStrategyImmediate PlanStrategyType = "immediate"
)

// PlanStrategySpec is the user-provided specification for how a rollout
// plan is computed. It is persisted with the rollout so recomputation
// uses the same settings.
type PlanStrategySpec struct {
	Type PlanStrategyType

	// ScalePureResizes applies to the dependency strategy: a changed app
	// whose only difference is its instance count emits a bare Scale
	// instead of the restart pair.
	ScalePureResizes bool
}
