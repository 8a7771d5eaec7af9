// ABOUTME: CLI commands for field management.
// ABOUTME: Add, edit, and retire fields in the hosted store.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/haul/internal/models"
)

var (
	fieldAddColor  string
	fieldAddTarget int
	fieldEditName  string
	fieldEditColor string
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage fields",
}

var fieldAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a field",
	Long: `Add a new field to the board.

A field with no --target accepts loads indefinitely.

EXAMPLES:

  haul field add "North Forty" --target 12
  haul field add "Creek Bottom" --color "#60a5fa" --target 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		target := fieldAddTarget
		if target <= 0 {
			target = models.DefaultTargetLoads
		}

		field, err := remoteDB.CreateField(cmd.Context(), args[0], fieldAddColor, target)
		if err != nil {
			return fmt.Errorf("failed to add field: %w", err)
		}

		color.Green("✓ Added %s", field.Name)
		fmt.Printf("  %s target %d loads\n",
			color.New(color.Faint).Sprint(field.ID), field.TargetLoads)
		return nil
	},
}

var fieldEditCmd = &cobra.Command{
	Use:   "edit <field>",
	Short: "Rename or recolor a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		field, err := resolveFieldArg(args[0])
		if err != nil {
			return err
		}
		if fieldEditName == "" && fieldEditColor == "" {
			return fmt.Errorf("nothing to change: pass --name and/or --color")
		}

		name := field.Name
		if fieldEditName != "" {
			name = fieldEditName
		}
		fieldColor := field.Color
		if fieldEditColor != "" {
			fieldColor = fieldEditColor
		}

		updated, err := remoteDB.UpdateField(cmd.Context(), field.ID, name, fieldColor)
		if err != nil {
			return fmt.Errorf("failed to edit field: %w", err)
		}

		color.Green("✓ Updated %s", updated.Name)
		return nil
	},
}

var fieldRmCmd = &cobra.Command{
	Use:     "rm <field>",
	Aliases: []string{"remove", "retire"},
	Short:   "Retire a field",
	Long: `Retire a field from the board.

The field disappears from the board but its load history is kept, so
driver totals and badges are unaffected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		field, err := resolveFieldArg(args[0])
		if err != nil {
			return err
		}
		if err := remoteDB.DeactivateField(cmd.Context(), field.ID); err != nil {
			return fmt.Errorf("failed to retire field: %w", err)
		}

		color.Yellow("✗ Retired %s", field.Name)
		return nil
	},
}

func init() {
	fieldAddCmd.Flags().StringVar(&fieldAddColor, "color", "#4ade80", "display color (hex)")
	fieldAddCmd.Flags().IntVar(&fieldAddTarget, "target", 0, "target load count")
	fieldEditCmd.Flags().StringVar(&fieldEditName, "name", "", "new name")
	fieldEditCmd.Flags().StringVar(&fieldEditColor, "color", "", "new display color (hex)")

	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldEditCmd)
	fieldCmd.AddCommand(fieldRmCmd)
	rootCmd.AddCommand(fieldCmd)
}
