// Package staterepotest provides contract tests for
// [domain.StateRepository] implementations.
package staterepotest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// Factory creates a fresh [domain.StateRepository] for each test.
type Factory func(t *testing.T) domain.StateRepository

// Run exercises the [domain.StateRepository] contract.
func Run(t *testing.T, factory Factory) {
	sampleSnapshot := func(id domain.SnapshotID) domain.StateSnapshot {
		return domain.StateSnapshot{
			ID: id,
			Root: domain.Group{
				ID: "/prod",
				Apps: []domain.AppSpec{{
					ID:           "/prod/api",
					Run:          domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve"}`)},
					Instances:    3,
					Version:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
					Dependencies: []domain.AppID{"/prod/db"},
					Upgrade:      domain.UpgradePolicy{MinimumHealthCapacity: 0.5},
				}},
				Groups: []domain.Group{{
					ID: "/prod/data",
					Apps: []domain.AppSpec{{
						ID:        "/prod/data/db",
						Run:       domain.RunSpec{Raw: json.RawMessage(`{"cmd":"mongod"}`)},
						Instances: 1,
						Version:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
					}},
				}},
			},
		}
	}

	t.Run("PutAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Put(ctx, sampleSnapshot("current")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := repo.Get(ctx, "current")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		apps, err := got.Root.Flatten()
		if err != nil {
			t.Fatalf("Flatten: %v", err)
		}
		if len(apps) != 2 {
			t.Errorf("flattened %d apps, want 2", len(apps))
		}
		api, ok := apps["/prod/api"]
		if !ok {
			t.Fatal("missing /prod/api after round trip")
		}
		if api.Instances != 3 || len(api.Dependencies) != 1 {
			t.Errorf("spec fields lost in round trip: %+v", api)
		}
		if api.Upgrade.MinimumHealthCapacity != 0.5 {
			t.Errorf("MinimumHealthCapacity = %v, want 0.5", api.Upgrade.MinimumHealthCapacity)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Put(ctx, sampleSnapshot("current"))

		replacement := sampleSnapshot("current")
		replacement.Root.Apps = nil
		if err := repo.Put(ctx, replacement); err != nil {
			t.Fatalf("second Put: %v", err)
		}

		got, _ := repo.Get(ctx, "current")
		apps, _ := got.Root.Flatten()
		if len(apps) != 1 {
			t.Errorf("flattened %d apps after replace, want 1", len(apps))
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Put(ctx, sampleSnapshot("a"))
		_ = repo.Put(ctx, sampleSnapshot("b"))

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
		_ = repo.Put(ctx, sampleSnapshot("current"))
		if err := repo.Delete(ctx, "current"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, err := repo.Get(ctx, "current")
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
