// Package rolloutrepotest provides contract tests for
// [domain.RolloutRepository] implementations.
package rolloutrepotest

import (
	"context"
	"errors"
	"testing"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// Factory creates a fresh [domain.RolloutRepository] for each test.
type Factory func(t *testing.T) domain.RolloutRepository

// Run exercises the [domain.RolloutRepository] contract.
func Run(t *testing.T, factory Factory) {
	sampleRollout := func() domain.Rollout {
		return domain.Rollout{
			ID:       "r1",
			Origin:   "current",
			Target:   "next",
			Strategy: domain.PlanStrategySpec{Type: domain.PlanStrategyDependency},
			State:    domain.RolloutStatePending,
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Create(ctx, sampleRollout()); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "r1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Origin != "current" || got.Target != "next" {
			t.Errorf("snapshots = %q -> %q, want current -> next", got.Origin, got.Target)
		}
		if got.Strategy.Type != domain.PlanStrategyDependency {
			t.Errorf("Strategy.Type = %q, want %q", got.Strategy.Type, domain.PlanStrategyDependency)
		}
		if got.State != domain.RolloutStatePending {
			t.Errorf("State = %q, want %q", got.State, domain.RolloutStatePending)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		r := sampleRollout()
		_ = repo.Create(ctx, r)
		err := repo.Create(ctx, r)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateStoresPlan", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		r := sampleRollout()
		_ = repo.Create(ctx, r)

		r.State = domain.RolloutStateApplied
		r.Plan = domain.DeploymentPlan{Steps: []domain.DeploymentStep{
			{Actions: []domain.DeploymentAction{
				{Kind: domain.ActionRestart, App: "/prod/db", Instances: 6, MinCapacity: 3},
			}},
			{Actions: []domain.DeploymentAction{
				{Kind: domain.ActionKillOldTasks, App: "/prod/db"},
				{Kind: domain.ActionScale, App: "/prod/db", Instances: 8},
			}},
		}}
		if err := repo.Update(ctx, r); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, _ := repo.Get(ctx, "r1")
		if got.State != domain.RolloutStateApplied {
			t.Errorf("State after Update = %q, want %q", got.State, domain.RolloutStateApplied)
		}
		if len(got.Plan.Steps) != 2 {
			t.Fatalf("Plan has %d steps after round trip, want 2", len(got.Plan.Steps))
		}
		restart := got.Plan.Steps[0].Actions[0]
		if restart.Kind != domain.ActionRestart || restart.MinCapacity != 3 {
			t.Errorf("restart action lost fields in round trip: %+v", restart)
		}
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.Update(context.Background(), domain.Rollout{ID: "nonexistent"})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Update: got %v, want ErrNotFound", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		r1 := sampleRollout()
		r2 := sampleRollout()
		r2.ID = "r2"
		_ = repo.Create(ctx, r1)
		_ = repo.Create(ctx, r2)

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List: got %d, want 2", len(got))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Create(ctx, sampleRollout())
		if err := repo.Delete(ctx, "r1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, err := repo.Get(ctx, "r1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.Delete(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Delete: got %v, want ErrNotFound", err)
		}
	})
}
