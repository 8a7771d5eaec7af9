// ABOUTME: CLI command rendering the field board.
// ABOUTME: Shows per-field progress, driver breakdown, and pin markers.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/haul/internal/models"
)

var fieldsCmd = &cobra.Command{
	Use:     "fields",
	Aliases: []string{"f", "board"},
	Short:   "Show the field board",
	Long: `Show all active fields in display order.

Pinned fields come first, then fields still needing loads, then
completed ones. Within a group, fields closest to done sort first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := ctrl.SortedFields()
		if len(fields) == 0 {
			fmt.Println("No active fields. Add one with 'haul field add'.")
			return nil
		}

		if !ctrl.Online() {
			color.Yellow("⚠ offline")
		}

		faint := color.New(color.Faint)
		for _, f := range fields {
			loads := ctrl.LoadsForField(f.ID)

			marker := " "
			if ctrl.Pinned(f.ID) {
				marker = "📌"
			}

			name := f.Name
			if f.Complete(loads) {
				name = color.GreenString("%s ✓", f.Name)
			}

			fmt.Printf("%s %s  %s  %d/%d\n",
				marker, name, progressBar(loads, f.TargetLoads, 20), loads, f.TargetLoads)

			if breakdown := ctrl.DriverBreakdownForField(f.ID); len(breakdown) > 0 {
				fmt.Printf("   %s\n", faint.Sprint(formatBreakdown(breakdown)))
			}
		}
		return nil
	},
}

// resolveFieldArg accepts an exact field ID or a case-insensitive name.
func resolveFieldArg(ref string) (*models.Field, error) {
	for _, f := range ctrl.Fields() {
		if f.ID == ref || strings.EqualFold(f.Name, ref) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown field: %s", ref)
}

func progressBar(count, target, width int) string {
	if target <= 0 {
		target = 1
	}
	filled := count * width / target
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled))
}

func formatBreakdown(breakdown []models.DriverCount) string {
	parts := make([]string, 0, len(breakdown))
	for _, dc := range breakdown {
		parts = append(parts, fmt.Sprintf("%s %d", dc.Name, dc.Count))
	}
	return strings.Join(parts, " · ")
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
