package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rollshift/rollshift-server/internal/application"
	"github.com/rollshift/rollshift-server/internal/domain"
	"github.com/rollshift/rollshift-server/internal/infrastructure/sqlite"
	"github.com/rollshift/rollshift-server/internal/infrastructure/syncworkflow"
)

var (
	applyDB               string
	applyOrigin           string
	applyTarget           string
	applyID               string
	applyStrategy         string
	applyScalePureResizes bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Plan and execute a rollout between two state trees",
	Long: `Store the origin and target state trees as snapshots, compute the plan,
and run it through the rollout workflow. Actions are recorded in the
rollout database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, err := loadTree(applyOrigin)
		if err != nil {
			return err
		}
		target, err := loadTree(applyTarget)
		if err != nil {
			return err
		}

		db, err := sqlite.Open(applyDB)
		if err != nil {
			return err
		}
		defer db.Close()

		stateRepo := &sqlite.StateRepo{DB: db}
		rolloutRepo := &sqlite.RolloutRepo{DB: db}
		recordRepo := &sqlite.ActionRecordRepo{DB: db}

		wf := &domain.RolloutWorkflow{
			Rollouts:   rolloutRepo,
			States:     stateRepo,
			Strategies: domain.DefaultStrategyFactory{},
			Executor:   &sqlite.RecordingExecutor{Records: recordRepo},
		}

		engine := &syncworkflow.Engine{}
		runner, err := engine.RolloutRunner(wf)
		if err != nil {
			return err
		}

		snapshots := &application.SnapshotService{States: stateRepo}
		rollouts := &application.RolloutService{
			Rollouts:  rolloutRepo,
			Records:   recordRepo,
			Execution: &application.ExecutionService{Workflow: runner},
		}

		rolloutID := applyID
		if rolloutID == "" {
			rolloutID = uuid.NewString()
		}

		ctx := context.Background()
		originID := domain.SnapshotID(rolloutID + "-origin")
		targetID := domain.SnapshotID(rolloutID + "-target")
		if err := snapshots.Put(ctx, domain.StateSnapshot{ID: originID, Root: origin}); err != nil {
			return err
		}
		if err := snapshots.Put(ctx, domain.StateSnapshot{ID: targetID, Root: target}); err != nil {
			return err
		}

		rollout, err := rollouts.Create(ctx, application.CreateRolloutInput{
			ID:     domain.RolloutID(rolloutID),
			Origin: originID,
			Target: targetID,
			Strategy: domain.PlanStrategySpec{
				Type:             domain.PlanStrategyType(applyStrategy),
				ScalePureResizes: applyScalePureResizes,
			},
		})
		if err != nil {
			return err
		}

		fmt.Printf("rollout %s: %s\n", rollout.ID, rollout.State)
		printPlan(rollout.Plan)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyDB, "db", "rollshift.db", "Path to the rollout database")
	applyCmd.Flags().StringVar(&applyOrigin, "origin", "", "Path to the origin state tree (JSON)")
	applyCmd.Flags().StringVar(&applyTarget, "target", "", "Path to the target state tree (JSON)")
	applyCmd.Flags().StringVar(&applyID, "id", "", "Rollout ID (generated when empty)")
	applyCmd.Flags().StringVar(&applyStrategy, "strategy", "", "Plan strategy (dependency or immediate)")
	applyCmd.Flags().BoolVar(&applyScalePureResizes, "scale-pure-resizes", false, "Emit a bare scale for instance-count-only changes")
	_ = applyCmd.MarkFlagRequired("origin")
	_ = applyCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(applyCmd)
}
