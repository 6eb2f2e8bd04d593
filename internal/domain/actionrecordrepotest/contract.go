// Package actionrecordrepotest provides contract tests for
// [domain.ActionRecordRepository] implementations.
package actionrecordrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// Factory creates a fresh [domain.ActionRecordRepository] for each test.
type Factory func(t *testing.T) domain.ActionRecordRepository

// Run exercises the [domain.ActionRecordRepository] contract.
func Run(t *testing.T, factory Factory) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sampleRecord := func() domain.ActionRecord {
		return domain.ActionRecord{
			RolloutID: "r1",
			App:       "/prod/api",
			Kind:      domain.ActionRestart,
			Step:      0,
			State:     domain.ActionStateExecuted,
			UpdatedAt: now,
		}
	}

	t.Run("PutAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Put(ctx, sampleRecord()); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := repo.Get(ctx, "r1", "/prod/api", domain.ActionRestart)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.State != domain.ActionStateExecuted {
			t.Errorf("State = %q, want %q", got.State, domain.ActionStateExecuted)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
		}
	})

	t.Run("PutUpserts", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		rec := sampleRecord()
		_ = repo.Put(ctx, rec)

		rec.State = domain.ActionStateFailed
		rec.UpdatedAt = now.Add(time.Minute)
		if err := repo.Put(ctx, rec); err != nil {
			t.Fatalf("second Put: %v", err)
		}

		got, _ := repo.Get(ctx, "r1", "/prod/api", domain.ActionRestart)
		if got.State != domain.ActionStateFailed {
			t.Errorf("State after upsert = %q, want %q", got.State, domain.ActionStateFailed)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "r1", "/prod/api", domain.ActionStop)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("SameAppDistinctKinds", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		restart := sampleRecord()
		kill := sampleRecord()
		kill.Kind = domain.ActionKillOldTasks
		kill.Step = 1
		_ = repo.Put(ctx, restart)
		_ = repo.Put(ctx, kill)

		got, err := repo.ListByRollout(ctx, "r1")
		if err != nil {
			t.Fatalf("ListByRollout: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected both kinds recorded, got %d records", len(got))
		}
	})

	t.Run("ListByRollout", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		mine := sampleRecord()
		other := sampleRecord()
		other.RolloutID = "r2"
		_ = repo.Put(ctx, mine)
		_ = repo.Put(ctx, other)

		got, err := repo.ListByRollout(ctx, "r1")
		if err != nil {
			t.Fatalf("ListByRollout: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("ListByRollout: got %d, want 1", len(got))
		}
		if got[0].RolloutID != "r1" {
			t.Errorf("record for %q leaked into r1's list", got[0].RolloutID)
		}
	})

	t.Run("DeleteByRollout", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Put(ctx, sampleRecord())

		if err := repo.DeleteByRollout(ctx, "r1"); err != nil {
			t.Fatalf("DeleteByRollout: %v", err)
		}
		got, _ := repo.ListByRollout(ctx, "r1")
		if len(got) != 0 {
			t.Fatalf("records remain after DeleteByRollout: %+v", got)
		}
	})
}
