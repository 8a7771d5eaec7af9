// ABOUTME: CLI commands for driver login and logout.
// ABOUTME: Verifies the PIN against the remote drivers table.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/haul/internal/models"
)

var loginPIN string

var loginCmd = &cobra.Command{
	Use:   "login <driver>",
	Short: "Log in as a driver",
	Long: `Log in as a driver by verifying your PIN.

The driver name must be one of the configured roster. The PIN is read
from the terminal without echo; pass --pin for scripted use.

EXAMPLES:

  haul login ABRI
  haul login heine --pin 1234`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driver := strings.ToUpper(args[0])

		known := false
		for _, d := range ctrl.Drivers() {
			if d == driver {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown driver: %s (roster: %s)", driver, strings.Join(ctrl.Drivers(), ", "))
		}

		pin := loginPIN
		if pin == "" {
			fmt.Printf("PIN for %s: ", driver)
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read PIN: %w", err)
			}
			pin = strings.TrimSpace(string(raw))
		}

		ok, err := remoteDB.VerifyPIN(cmd.Context(), driver, pin)
		if err != nil {
			return fmt.Errorf("failed to verify PIN: %w", err)
		}
		if !ok {
			return fmt.Errorf("wrong PIN")
		}

		sess := models.Session{
			Driver:   driver,
			LoggedIn: time.Now().Format(time.RFC3339),
		}
		if err := localDB.SetSession(sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		color.Green("✓ Logged in as %s", driver)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out the current driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := localDB.Session()
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := localDB.ClearSession(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		color.Yellow("✗ Logged out %s", sess.Driver)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPIN, "pin", "", "PIN (omit to be prompted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
