package dbosworkflows_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rollshift/rollshift-server/internal/application"
	"github.com/rollshift/rollshift-server/internal/domain"
	"github.com/rollshift/rollshift-server/internal/infrastructure/dbosworkflows"
	"github.com/rollshift/rollshift-server/internal/infrastructure/sqlite"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	// Ryuk (the reaper) requires a Docker bridge network that does not
	// exist on Podman. We handle cleanup via t.Cleanup instead.
	t.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dbos_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get postgres connection string: %v", err)
	}
	return connStr
}

func rolloutTestApp(id string, instances int, deps ...domain.AppID) domain.AppSpec {
	return domain.AppSpec{
		ID:           domain.AppID(id),
		Run:          domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve"}`)},
		Instances:    instances,
		Version:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Dependencies: deps,
		Upgrade:      domain.UpgradePolicy{MinimumHealthCapacity: 0.5},
	}
}

func TestRollout_DBOS(t *testing.T) {
	connStr := startPostgres(t)

	ctx := context.Background()

	dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
		AppName:     "rollshift-dbos-test",
		DatabaseURL: connStr,
	})
	if err != nil {
		t.Fatalf("NewDBOSContext: %v", err)
	}

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

	engine := &dbosworkflows.Engine{DBOSCtx: dbosCtx}
	runner, err := engine.RolloutRunner(wf)
	if err != nil {
		t.Fatalf("RolloutRunner: %v", err)
	}

	if err := dbos.Launch(dbosCtx); err != nil {
		t.Fatalf("dbos.Launch: %v", err)
	}
	t.Cleanup(func() { dbos.Shutdown(dbosCtx, 5*time.Second) })

	execution := &application.ExecutionService{Workflow: runner}

	rolloutSvc := &application.RolloutService{
		Rollouts:  rolloutRepo,
		Records:   recordRepo,
		Execution: execution,
	}
	snapshotSvc := &application.SnapshotService{States: stateRepo}

	if err := snapshotSvc.Put(ctx, domain.StateSnapshot{
		ID:   "current",
		Root: domain.Group{ID: "/", Apps: []domain.AppSpec{rolloutTestApp("/web", 3)}},
	}); err != nil {
		t.Fatalf("put current snapshot: %v", err)
	}

	next := rolloutTestApp("/web", 3)
	next.Run = domain.RunSpec{Raw: json.RawMessage(`{"cmd":"serve","image":"v2"}`)}
	if err := snapshotSvc.Put(ctx, domain.StateSnapshot{
		ID:   "next",
		Root: domain.Group{ID: "/", Apps: []domain.AppSpec{next, rolloutTestApp("/worker", 2)}},
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
	// Both apps are dependency-free, so everything lands in one step.
	if len(rollout.Plan.Steps) != 1 {
		t.Fatalf("plan has %d steps, want 1", len(rollout.Plan.Steps))
	}

	records, err := recordRepo.ListByRollout(ctx, "r1")
	if err != nil {
		t.Fatalf("ListByRollout: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 action records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.State != domain.ActionStateExecuted {
			t.Errorf("record for %s %s: State = %q, want %q", rec.App, rec.Kind, rec.State, domain.ActionStateExecuted)
		}
	}
}
