// ABOUTME: CLI command for a live feed of remote changes.
// ABOUTME: Subscribes to the store's change feed and prints events as they land.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/haul/internal/remote"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch loads land in real time",
	Long: `Stay connected to the hosted store and print every change as other
devices make it. Ctrl-C to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		ctrl.SetOnEvent(printEvent)
		fmt.Println("Watching for loads... (Ctrl-C to stop)")

		err := ctrl.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printEvent(ev remote.Event) {
	stamp := color.New(color.Faint).Sprint(time.Now().Format("15:04:05"))
	switch ev.Type {
	case remote.EventLoadInserted:
		name := ev.Load.FieldID
		if f, err := resolveFieldArg(ev.Load.FieldID); err == nil {
			name = f.Name
		}
		fmt.Printf("%s %s %s dumped on %s\n", stamp, color.GreenString("+"), ev.Load.Driver, name)
	case remote.EventLoadDeleted:
		fmt.Printf("%s %s load removed\n", stamp, color.YellowString("-"))
	case remote.EventFieldsChanged:
		fmt.Printf("%s %s fields changed\n", stamp, color.CyanString("~"))
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
