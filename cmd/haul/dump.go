// ABOUTME: CLI command for recording a load on a field.
// ABOUTME: Applies the optimistic mutation and reports streak progress.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:     "dump <field>",
	Aliases: []string{"d", "load"},
	Short:   "Record a load dumped on a field",
	Long: `Record one load dumped on a field by the logged-in driver.

The record shows up immediately, on this device and on every other one,
and is confirmed against the hosted store in the background. If the
store rejects it the record is taken back and the board shows offline.

EXAMPLES:

  haul dump "North Forty"
  haul d creek             # field ID or name, case-insensitive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		field, err := resolveFieldArg(args[0])
		if err != nil {
			return err
		}

		load, err := ctrl.RecordDump(cmd.Context(), field.ID)
		if err != nil {
			return fmt.Errorf("failed to record load: %w", err)
		}

		count := ctrl.LoadsForField(field.ID)
		color.Green("✓ Load on %s", field.Name)
		fmt.Printf("  %s %d/%d loads",
			color.New(color.Faint).Sprint(load.Driver),
			count, field.TargetLoads)
		if field.Complete(count) {
			fmt.Printf("  %s", color.GreenString("done!"))
		}
		fmt.Println()

		if streak := ctrl.StreakCount(); streak > 1 {
			fmt.Printf("  🔥 %d day streak\n", streak)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
