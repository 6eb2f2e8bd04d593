package application

import (
	"context"
	"fmt"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// SnapshotService manages desired-state snapshots.
type SnapshotService struct {
	States domain.StateRepository
}

// Put validates the snapshot's tree invariant and stores it, replacing
// any snapshot with the same id.
func (s *SnapshotService) Put(ctx context.Context, snapshot domain.StateSnapshot) error {
	if snapshot.ID == "" {
		return fmt.Errorf("%w: snapshot ID is required", domain.ErrInvalidArgument)
	}
	if _, err := snapshot.Root.Flatten(); err != nil {
		return err
	}
	return s.States.Put(ctx, snapshot)
}

func (s *SnapshotService) Get(ctx context.Context, id domain.SnapshotID) (domain.StateSnapshot, error) {
	return s.States.Get(ctx, id)
}

func (s *SnapshotService) List(ctx context.Context) ([]domain.StateSnapshot, error) {
	return s.States.List(ctx)
}

func (s *SnapshotService) Delete(ctx context.Context, id domain.SnapshotID) error {
	return s.States.Delete(ctx, id)
}
