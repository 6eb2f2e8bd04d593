package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollshift/rollshift-server/internal/domain"
)

var (
	planOrigin           string
	planTarget           string
	planStrategy         string
	planScalePureResizes bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the rollout plan between two state trees",
	Long: `Diff the origin and target state trees and print the ordered plan that
carries the cluster from one to the other. Nothing is executed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, err := loadTree(planOrigin)
		if err != nil {
			return err
		}
		target, err := loadTree(planTarget)
		if err != nil {
			return err
		}

		delta, err := domain.ComputeDelta(origin, target)
		if err != nil {
			return err
		}

		strategy, err := domain.DefaultStrategyFactory{}.PlanStrategy(domain.PlanStrategySpec{
			Type:             domain.PlanStrategyType(planStrategy),
			ScalePureResizes: planScalePureResizes,
		})
		if err != nil {
			return err
		}

		plan, err := strategy.Plan(context.Background(), delta)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}
		printPlan(plan)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planOrigin, "origin", "", "Path to the origin state tree (JSON)")
	planCmd.Flags().StringVar(&planTarget, "target", "", "Path to the target state tree (JSON)")
	planCmd.Flags().StringVar(&planStrategy, "strategy", "", "Plan strategy (dependency or immediate)")
	planCmd.Flags().BoolVar(&planScalePureResizes, "scale-pure-resizes", false, "Emit a bare scale for instance-count-only changes")
	_ = planCmd.MarkFlagRequired("origin")
	_ = planCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(planCmd)
}
