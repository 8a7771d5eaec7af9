// ABOUTME: CLI command for undoing the driver's most recent load.
// ABOUTME: Removes the load optimistically; other drivers' loads are untouched.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/haul/internal/ledger"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo your most recent load",
	Long: `Remove the logged-in driver's most recent load.

Only your own loads can be undone, and only the latest one. Streaks and
badges already earned stay earned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		load, err := ctrl.UndoLastDump(cmd.Context())
		if errors.Is(err, ledger.ErrNoLoads) {
			fmt.Println("Nothing to undo.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to undo: %w", err)
		}

		name := load.FieldID
		if f, err := resolveFieldArg(load.FieldID); err == nil {
			name = f.Name
		}
		color.Yellow("✗ Removed your load on %s", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(undoCmd)
}
