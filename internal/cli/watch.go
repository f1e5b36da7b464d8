package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"portalctl/internal/watch"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&unifyBase, "base", "", "base document used as the shell template (default from config)")
	watchCmd.Flags().StringSliceVar(&unifyExclude, "exclude", nil, "doublestar patterns of routes to leave alone")
}

var watchCmd = &cobra.Command{
	Use:   "watch [out-dir]",
	Short: "Unify the export every time the static build rewrites it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUnifier(args)
		w := &watch.Watcher{
			Root:     u.Root,
			Options:  u.Options,
			Debounce: conf.Debounce(),
			Run: func(ctx context.Context) error {
				rep, err := u.Run(ctx)
				if err == nil {
					printReport(cmd.OutOrStdout(), rep)
				}
				return err
			},
		}

		// Handle Ctrl+C
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return w.Watch(ctx)
	},
}
