// ABOUTME: Root Cobra command for haul CLI.
// ABOUTME: Handles config, store, and ledger lifecycle via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/haul/internal/config"
	"github.com/harperreed/haul/internal/ledger"
	"github.com/harperreed/haul/internal/localstore"
	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

var (
	cfg      *config.Config
	localDB  *localstore.Store
	remoteDB remote.Store
	ctrl     *ledger.Controller
)

var rootCmd = &cobra.Command{
	Use:   "haul",
	Short: "Shared field-load tracker",
	Long: `Haul tracks loads dumped onto fields and keeps every device in sync.

Each driver logs the loads they haul out; the board shows per-field
progress toward a target, pinned fields float to the top, and daily
streaks and badges keep the competition going.

QUICK START:

  $ haul login ABRI        # Unlock with your PIN
  $ haul fields            # See the field board
  $ haul dump "North Forty"  # Record a load
  $ haul undo              # Take back your last load
  $ haul status            # Streak, rate, and per-driver totals

FIELD MANAGEMENT:

  $ haul field add "Creek Bottom" --color "#60a5fa" --target 12
  $ haul field edit creek --name "Creek Bottom East"
  $ haul field rm creek    # Retire a field (history is kept)
  $ haul pin creek         # Keep it at the top of the board

SYNC:

  Records live in a hosted store shared by every device. Other drivers'
  loads appear as they happen; run 'haul watch' for a live feed. When
  the store is unreachable the board keeps the last known state and
  shows an offline marker.

MCP INTEGRATION:

  Run 'haul mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "haul": { "command": "haul", "args": ["mcp"] }
    }
  }`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that never touch the stores
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return openStores(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctrl != nil {
			ctrl.Flush()
		}
		if remoteDB != nil {
			if err := remoteDB.Close(); err != nil {
				return err
			}
		}
		if localDB != nil {
			return localDB.Close()
		}
		return nil
	},
}

func openStores(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.LocalStorePath(), 0750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	localDB, err = localstore.Open(cfg.LocalStorePath())
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}

	remoteDB, err = cfg.OpenRemote()
	if err != nil {
		return fmt.Errorf("failed to open remote store: %w", err)
	}

	driver := ""
	if sess, err := localDB.Session(); err == nil && sess != nil {
		driver = sess.Driver
	}

	ctrl, err = ledger.New(ledger.Config{
		Store:         remoteDB,
		Local:         localDB,
		Driver:        driver,
		Drivers:       cfg.GetDrivers(),
		OnAchievement: announceAchievement,
	})
	if err != nil {
		return fmt.Errorf("failed to start ledger: %w", err)
	}

	if err := ctrl.Refresh(cmd.Context()); err != nil {
		color.Yellow("⚠ offline - showing last known state")
	}
	return nil
}

func announceAchievement(a models.Achievement) {
	color.New(color.FgYellow, color.Bold).Printf("%s Achievement unlocked: %s\n", a.Icon, a.Title)
	fmt.Printf("  %s\n", color.New(color.Faint).Sprint(a.Description))
}

// requireLogin guards commands that mutate the ledger.
func requireLogin() error {
	if ctrl.Driver() == "" {
		return fmt.Errorf("not logged in - run 'haul login <driver>' first")
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
