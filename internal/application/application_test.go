package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rollshift/rollshift-server/internal/application"
	"github.com/rollshift/rollshift-server/internal/domain"
	"github.com/rollshift/rollshift-server/internal/infrastructure/sqlite"
	"github.com/rollshift/rollshift-server/internal/infrastructure/syncworkflow"
)

type testHarness struct {
	snapshots *application.SnapshotService
	rollouts  *application.RolloutService
	records   *sqlite.ActionRecordRepo
}

func setup(t *testing.T) testHarness {
	t.Helper()
	db := sqlite.OpenTestDB(t)

	stateRepo := &sqlite.StateRepo{DB: db}
	rolloutRepo := &sqlite.RolloutRepo{DB: db}
	recordRepo := &sqlite.ActionRecordRepo{DB: db}

	executor := &sqlite.RecordingExecutor{
		Records: recordRepo,
		Now:     func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) },
	}

	wf := &domain.RolloutWorkflow{
		Rollouts:   rolloutRepo,
		States:     stateRepo,
		Strategies: domain.DefaultStrategyFactory{},
		Executor:   executor,
	}

	engine := &syncworkflow.Engine{}
	runner, err := engine.RolloutRunner(wf)
	if err != nil {
		t.Fatalf("RolloutRunner: %v", err)
	}

	return testHarness{
		snapshots: &application.SnapshotService{States: stateRepo},
		rollouts: &application.RolloutService{
			Rollouts:  rolloutRepo,
			Records:   recordRepo,
			Execution: &application.ExecutionService{Workflow: runner},
		},
		records: recordRepo,
	}
}

func app(id string, instances int, deps ...domain.AppID) domain.AppSpec {
	return domain.AppSpec{
		ID:           domain.AppID(id),
		Run:          domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve"}`)},
		Instances:    instances,
		Version:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Dependencies: deps,
		Upgrade:      domain.UpgradePolicy{MinimumHealthCapacity: 0.5},
	}
}

func putSnapshot(t *testing.T, h testHarness, id string, apps ...domain.AppSpec) {
	t.Helper()
	must(t, h.snapshots.Put(context.Background(), domain.StateSnapshot{
		ID:   domain.SnapshotID(id),
		Root: domain.Group{ID: "/", Apps: apps},
	}))
}

func TestCreateRollout_AppliesPlan(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	db1 := app("/infra/db", 2)
	api1 := app("/api", 4, "/infra/db")
	putSnapshot(t, h, "current", db1, api1)

	db2 := app("/infra/db", 2)
	db2.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	api2 := app("/api", 4, "/infra/db")
	api2.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	putSnapshot(t, h, "next", db2, api2)

	rollout, err := h.rollouts.Create(ctx, application.CreateRolloutInput{
		ID:     "r1",
		Origin: "current",
		Target: "next",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rollout.State != domain.RolloutStateApplied {
		t.Errorf("State = %q, want %q", rollout.State, domain.RolloutStateApplied)
	}
	if len(rollout.Plan.Steps) != 4 {
		t.Fatalf("plan has %d steps, want 4", len(rollout.Plan.Steps))
	}

	records, err := h.records.ListByRollout(ctx, "r1")
	if err != nil {
		t.Fatalf("ListByRollout: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected 6 action records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.State != domain.ActionStateExecuted {
			t.Errorf("record for %s %s: State = %q, want %q", rec.App, rec.Kind, rec.State, domain.ActionStateExecuted)
		}
	}
}

func TestCreateRollout_NoChanges(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	web := app("/web", 3)
	putSnapshot(t, h, "current", web)
	putSnapshot(t, h, "next", web)

	rollout, err := h.rollouts.Create(ctx, application.CreateRolloutInput{
		ID:     "r1",
		Origin: "current",
		Target: "next",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rollout.State != domain.RolloutStateApplied {
		t.Errorf("State = %q, want %q", rollout.State, domain.RolloutStateApplied)
	}
	if !rollout.Plan.Empty() {
		t.Errorf("plan has %d steps, want none", len(rollout.Plan.Steps))
	}

	records, _ := h.records.ListByRollout(ctx, "r1")
	if len(records) != 0 {
		t.Fatalf("expected 0 action records, got %d", len(records))
	}
}

func TestCreateRollout_MissingSnapshot(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	putSnapshot(t, h, "current", app("/web", 3))

	_, err := h.rollouts.Create(ctx, application.CreateRolloutInput{
		ID:     "r1",
		Origin: "current",
		Target: "missing",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	rollout, err := h.rollouts.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rollout.State != domain.RolloutStateFailed {
		t.Errorf("State = %q, want %q", rollout.State, domain.RolloutStateFailed)
	}
}

func TestCreateRollout_DependencyCycle(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	a1 := app("/a", 2, "/b")
	b1 := app("/b", 2, "/a")
	putSnapshot(t, h, "current", a1, b1)

	a2 := app("/a", 2, "/b")
	a2.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	b2 := app("/b", 2, "/a")
	b2.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	putSnapshot(t, h, "next", a2, b2)

	_, err := h.rollouts.Create(ctx, application.CreateRolloutInput{
		ID:     "r1",
		Origin: "current",
		Target: "next",
	})
	if !errors.Is(err, domain.ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got: %v", err)
	}

	rollout, err := h.rollouts.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rollout.State != domain.RolloutStateFailed {
		t.Errorf("State = %q, want %q", rollout.State, domain.RolloutStateFailed)
	}
}

func TestCreateRollout_DuplicateID(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	putSnapshot(t, h, "current", app("/web", 3))
	putSnapshot(t, h, "next", app("/web", 5))

	in := application.CreateRolloutInput{ID: "r1", Origin: "current", Target: "next"}
	if _, err := h.rollouts.Create(ctx, in); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := h.rollouts.Create(ctx, in)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got: %v", err)
	}
}

func TestDeleteRollout_RemovesRecords(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	putSnapshot(t, h, "current", app("/web", 3))
	next := app("/web", 3)
	next.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	putSnapshot(t, h, "next", next)

	if _, err := h.rollouts.Create(ctx, application.CreateRolloutInput{
		ID:     "r1",
		Origin: "current",
		Target: "next",
	}); err != nil {
		t.Fatal(err)
	}

	if err := h.rollouts.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	records, _ := h.records.ListByRollout(ctx, "r1")
	if len(records) != 0 {
		t.Fatalf("expected 0 action records after delete, got %d", len(records))
	}

	_, err := h.rollouts.Get(ctx, "r1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestCreateRollout_MissingID(t *testing.T) {
	h := setup(t)
	_, err := h.rollouts.Create(context.Background(), application.CreateRolloutInput{})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
}

func TestPutSnapshot_DuplicateAppID(t *testing.T) {
	h := setup(t)
	err := h.snapshots.Put(context.Background(), domain.StateSnapshot{
		ID: "bad",
		Root: domain.Group{
			ID:   "/",
			Apps: []domain.AppSpec{app("/web", 1)},
			Groups: []domain.Group{
				{ID: "/nested", Apps: []domain.AppSpec{app("/web", 2)}},
			},
		},
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
