package domain

// RolloutID identifies one rollout: one planning call and its
// execution.
type RolloutID string

// SnapshotID names a stored state-tree snapshot.
type SnapshotID string

// RolloutState indicates the lifecycle state of a rollout.
type RolloutState string

const (
	RolloutStatePending  RolloutState = "pending"
	RolloutStateApplying RolloutState = "applying"
	RolloutStateApplied  RolloutState = "applied"
	RolloutStateFailed   RolloutState = "failed"
)

// Rollout is one transition of the cluster from an origin snapshot to a
// target snapshot. The plan is computed once from the two snapshots and
// never mutated; a cancelled rollout is not resumed but replaced by a
// new rollout planned from the latest observed state.
type Rollout struct {
	ID       RolloutID
	Origin   SnapshotID
	Target   SnapshotID
	Strategy PlanStrategySpec
	Plan     DeploymentPlan
	State    RolloutState
}

// StateSnapshot is a named desired-state tree held by the state store.
type StateSnapshot struct {
	ID   SnapshotID
	Root Group
}
