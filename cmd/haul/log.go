// ABOUTME: CLI command for the activity log.
// ABOUTME: Shows recent loads newest-first with relative timestamps.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"activity"},
	Short:   "Show recent load activity",
	Long: `Show recent loads across all drivers, newest first.

Records still waiting on store confirmation are marked pending.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := ctrl.Activity()
		if len(entries) == 0 {
			fmt.Println("No activity yet.")
			return nil
		}
		if len(entries) > logLimit {
			entries = entries[:logLimit]
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			pending := ""
			if e.Pending {
				pending = faint.Sprint(" (pending)")
			}
			fmt.Printf("%s %s dumped on %s%s\n",
				faint.Sprint(padRight(relTime(e.CreatedAt, time.Now()), 14)),
				e.Driver, e.FieldName, pending)
		}
		return nil
	},
}

// relTime renders a compact relative timestamp.
func relTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2 15:04")
	}
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "max number of entries")
	rootCmd.AddCommand(logCmd)
}
