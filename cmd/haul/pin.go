// ABOUTME: CLI commands for pinning fields.
// ABOUTME: Pins are device-local and float a field to the top of the board.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin <field>",
	Short: "Pin a field to the top of the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := resolveFieldArg(args[0])
		if err != nil {
			return err
		}
		if err := ctrl.Pin(field.ID); err != nil {
			return fmt.Errorf("failed to pin: %w", err)
		}
		color.Green("✓ Pinned %s", field.Name)
		return nil
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <field>",
	Short: "Remove a field's pin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := resolveFieldArg(args[0])
		if err != nil {
			return err
		}
		if err := ctrl.Unpin(field.ID); err != nil {
			return fmt.Errorf("failed to unpin: %w", err)
		}
		color.Yellow("✗ Unpinned %s", field.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
}
