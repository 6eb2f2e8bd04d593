package goworkflows_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cschleiden/go-workflows/backend"
	wfsqlite "github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/worker"

	"github.com/rollshift/rollshift-server/internal/application"
	"github.com/rollshift/rollshift-server/internal/domain"
	"github.com/rollshift/rollshift-server/internal/infrastructure/goworkflows"
	"github.com/rollshift/rollshift-server/internal/infrastructure/sqlite"
)

func startWorker(t *testing.T, b backend.Backend) *worker.Worker {
	t.Helper()
	w := worker.New(b, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.WaitForCompletion()
	})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	return w
}

func upgradeTestApp(id string, instances int, deps ...domain.AppID) domain.AppSpec {
	return domain.AppSpec{
		ID:           domain.AppID(id),
		Run:          domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve"}`)},
		Instances:    instances,
		Version:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Dependencies: deps,
		Upgrade:      domain.UpgradePolicy{MinimumHealthCapacity: 0.5},
	}
}

func TestRollout_GoWorkflows(t *testing.T) {
	b := wfsqlite.NewInMemoryBackend()
	w := startWorker(t, b)
	c := client.New(b)

	db := sqlite.OpenTestDB(t)
	stateRepo := &sqlite.StateRepo{DB: db}
	rolloutRepo := &sqlite.RolloutRepo{DB: db}
	recordRepo := &sqlite.ActionRecordRepo{DB: db}

	executor := &sqlite.RecordingExecutor{
		Records: recordRepo,
		Now:     func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}

	wf := &domain.RolloutWorkflow{
		Rollouts:   rolloutRepo,
		States:     stateRepo,
		Strategies: domain.DefaultStrategyFactory{},
		Executor:   executor,
	}

	engine := &goworkflows.Engine{Worker: w, Client: c, Timeout: 10 * time.Second}
	runner, err := engine.RolloutRunner(wf)
	if err != nil {
		t.Fatalf("RolloutRunner: %v", err)
	}

	execution := &application.ExecutionService{Workflow: runner}

	rolloutSvc := &application.RolloutService{
		Rollouts:  rolloutRepo,
		Records:   recordRepo,
		Execution: execution,
	}
	snapshotSvc := &application.SnapshotService{States: stateRepo}

	ctx := context.Background()

	db1 := upgradeTestApp("/infra/db", 2)
	api1 := upgradeTestApp("/api", 4, "/infra/db")
	if err := snapshotSvc.Put(ctx, domain.StateSnapshot{
		ID:   "current",
		Root: domain.Group{ID: "/", Apps: []domain.AppSpec{db1, api1}},
	}); err != nil {
		t.Fatalf("put current snapshot: %v", err)
	}

	db2 := upgradeTestApp("/infra/db", 2)
	db2.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	api2 := upgradeTestApp("/api", 4, "/infra/db")
	api2.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	if err := snapshotSvc.Put(ctx, domain.StateSnapshot{
		ID:   "next",
		Root: domain.Group{ID: "/", Apps: []domain.AppSpec{db2, api2}},
	}); err != nil {
		t.Fatalf("put next snapshot: %v", err)
	}

	rollout, err := rolloutSvc.Create(ctx, application.CreateRolloutInput{
		ID:     "r1",
		Origin: "current",
		Target: "next",
	})
	if err != nil {
		t.Fatalf("Create rollout: %v", err)
	}

	if rollout.State != domain.RolloutStateApplied {
		t.Errorf("State = %q, want %q", rollout.State, domain.RolloutStateApplied)
	}
	// Two dependent restarts phase into restart, kill, and scale actions.
	if len(rollout.Plan.Steps) != 4 {
		t.Fatalf("plan has %d steps, want 4", len(rollout.Plan.Steps))
	}

	records, err := recordRepo.ListByRollout(ctx, "r1")
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
