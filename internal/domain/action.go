package domain

import "slices"

// ActionKind identifies one of the closed set of rollout operations.
type ActionKind string

const (
	// ActionStart launches a new application at its target instance count.
	ActionStart ActionKind = "start"
	// ActionStop tears down a removed application entirely.
	ActionStop ActionKind = "stop"
	// ActionScale adjusts a running application to an exact instance count.
	ActionScale ActionKind = "scale"
	// ActionRestart replaces instances with the new specification while
	// keeping at least MinCapacity old instances alive and bringing at
	// least Instances new instances up.
	ActionRestart ActionKind = "restart"
	// ActionKillOldTasks removes the instances still running the old
	// specification. Emitted together with a Scale to the final count.
	ActionKillOldTasks ActionKind = "kill-old-tasks"
)

// DeploymentAction is one rollout operation against one application.
// Actions are immutable values; equality is structural.
//
// Instances is the operation's instance target: the final count for
// Start and Scale, the phase health floor for Restart, and zero for
// Stop and KillOldTasks. MinCapacity is set only on Restart and is the
// number of old instances guaranteed to stay alive through the phase.
type DeploymentAction struct {
	Kind        ActionKind
	App         AppID
	Instances   int
	MinCapacity int
}

// DeploymentStep is a set of actions safe to execute concurrently: no
// action in a step depends on another action in the same step. The
// executor must complete a whole step before beginning the next.
type DeploymentStep struct {
	Actions []DeploymentAction
}

// DeploymentPlan is the ordered sequence of steps carrying a cluster
// from one snapshot to another. It is immutable once produced.
type DeploymentPlan struct {
	Steps []DeploymentStep
}

// Empty reports whether the plan has no steps.
func (p DeploymentPlan) Empty() bool { return len(p.Steps) == 0 }

// sortActions orders actions by app id, then kind, so steps render and
// compare deterministically. Step semantics are unordered.
func sortActions(actions []DeploymentAction) {
	slices.SortFunc(actions, func(a, b DeploymentAction) int {
		if a.App != b.App {
			if a.App < b.App {
				return -1
			}
			return 1
		}
		if a.Kind != b.Kind {
			if a.Kind < b.Kind {
				return -1
			}
			return 1
		}
		return 0
	})
}
