// Package cli implements schedulectl, a terminal companion for the
// scheduling agent.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schedulectl",
	Short: "Exercise the appointment scheduling agent from a terminal",
	Long: `schedulectl resolves natural-language appointment times and runs the
scheduling interview interactively, either against a real scheduling backend
or in dry-run mode.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
