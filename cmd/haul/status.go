// ABOUTME: CLI command for the stats header view.
// ABOUTME: Shows streak, today's rate, per-driver totals, and earned badges.
package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var motivationalQuotes = []string{
	"Every load counts towards greatness",
	"Spreading success, one dump at a time",
	"Champions are made in the fields",
	"Today's shit is tomorrow's gold",
	"Keep on truckin', legend",
	"Making the world a fertilized place",
	"You're on a roll today!",
	"The early bird gets the load",
	"Hauling dreams into reality",
	"Another day, another pile conquered",
	"You've got the power!",
	"Keep pushing, keep dumping",
	"Excellence is a habit, not an act",
	"The grind never stops",
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show streak, rate, and driver totals",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)

		fmt.Printf("%s\n\n", faint.Sprintf("“%s”", motivationalQuotes[rand.Intn(len(motivationalQuotes))]))

		if driver := ctrl.Driver(); driver != "" {
			fmt.Printf("Driver: %s\n", color.New(color.Bold).Sprint(driver))
		} else {
			fmt.Println("Driver: not logged in")
		}
		if !ctrl.Online() {
			color.Yellow("⚠ offline - showing last known state")
		}

		if streak := ctrl.StreakCount(); streak > 0 {
			fmt.Printf("Streak: 🔥 %d day", streak)
			if streak > 1 {
				fmt.Print("s")
			}
			fmt.Println()
		}
		if rate := ctrl.AverageLoadsPerHourToday(); rate > 0 {
			fmt.Printf("Rate:   %.1f loads/hour today\n", rate)
		}
		if last, ok := ctrl.LastLoad(); ok {
			fmt.Printf("Last:   %s on %s\n", relTime(last.CreatedAt, time.Now()), last.FieldName)
		}

		fmt.Println()
		for _, ds := range ctrl.DriverStatsAll() {
			fmt.Printf("  %s  today %d  total %d\n",
				padRight(ds.Name, 8), ds.TodayLoads, ds.TotalLoads)
		}

		if earned := ctrl.EarnedAchievements(); len(earned) > 0 {
			fmt.Println()
			for _, a := range earned {
				fmt.Printf("  %s %s %s\n", a.Icon, a.Title, faint.Sprint(a.Description))
			}
		}
		return nil
	},
}

func padRight(s string, length int) string {
	for len(s) < length {
		s += " "
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
