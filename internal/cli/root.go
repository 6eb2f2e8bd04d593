// Package cli implements the rollshift command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollshift/rollshift-server/internal/domain"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:     "rollshift",
	Version: "dev",
	Short:   "Dependency-ordered rollout planning for hierarchical app trees",
	Long: `rollshift diffs two desired-state snapshots of an application tree and
computes an ordered rollout plan whose steps respect the dependency
relationships declared between applications.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// loadTree reads a state tree document from a JSON file.
func loadTree(path string) (domain.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Group{}, fmt.Errorf("read state tree: %w", err)
	}
	var root domain.Group
	if err := json.Unmarshal(data, &root); err != nil {
		return domain.Group{}, fmt.Errorf("parse state tree %s: %w", path, err)
	}
	if _, err := root.Flatten(); err != nil {
		return domain.Group{}, err
	}
	return root, nil
}

// printPlan writes a plan step by step in a human-readable form.
func printPlan(plan domain.DeploymentPlan) {
	if plan.Empty() {
		fmt.Println("nothing to do")
		return
	}
	for i, step := range plan.Steps {
		fmt.Printf("step %d:\n", i+1)
		for _, action := range step.Actions {
			switch action.Kind {
			case domain.ActionStart, domain.ActionScale, domain.ActionRestart:
				fmt.Printf("  %-14s %-30s instances=%d min=%d\n", action.Kind, action.App, action.Instances, action.MinCapacity)
			default:
				fmt.Printf("  %-14s %s\n", action.Kind, action.App)
			}
		}
	}
}
