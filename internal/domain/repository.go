package domain

import "context"

// StateRepository persists and retrieves state-tree snapshots.
type StateRepository interface {
	Put(ctx context.Context, snapshot StateSnapshot) error
	Get(ctx context.Context, id SnapshotID) (StateSnapshot, error)
	List(ctx context.Context) ([]StateSnapshot, error)
	Delete(ctx context.Context, id SnapshotID) error
}

// RolloutRepository persists and retrieves rollouts.
type RolloutRepository interface {
	Create(ctx context.Context, r Rollout) error
	Get(ctx context.Context, id RolloutID) (Rollout, error)
	List(ctx context.Context) ([]Rollout, error)
	Update(ctx context.Context, r Rollout) error
	Delete(ctx context.Context, id RolloutID) error
}

// ActionRecordRepository persists execution records for each action of
// a rollout.
type ActionRecordRepository interface {
	Put(ctx context.Context, record ActionRecord) error
	Get(ctx context.Context, rolloutID RolloutID, app AppID, kind ActionKind) (ActionRecord, error)
	ListByRollout(ctx context.Context, rolloutID RolloutID) ([]ActionRecord, error)
	DeleteByRollout(ctx context.Context, rolloutID RolloutID) error
}
