package domain

import "fmt"

// StrategyFactory instantiates the appropriate plan strategy from a
// user-provided spec.
type StrategyFactory interface {
	PlanStrategy(spec PlanStrategySpec) (PlanStrategy, error)
}

// DefaultStrategyFactory creates built-in strategy implementations.
// Built-in strategies are pure with no I/O; the rollout pipeline still
// invokes them from activities so future strategies may perform I/O
// safely.
type DefaultStrategyFactory struct{}

func (f DefaultStrategyFactory) PlanStrategy(spec PlanStrategySpec) (PlanStrategy, error) {
	switch spec.Type {
	case PlanStrategyDependency, "":
		return &DependencyPlanner{ScalePureResizes: spec.ScalePureResizes}, nil
	case PlanStrategyImmediate:
		return &ImmediatePlanner{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported plan strategy type %q", ErrInvalidArgument, spec.Type)
	}
}
