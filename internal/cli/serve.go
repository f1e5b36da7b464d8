package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"portalctl/internal/preview"
	"portalctl/internal/system"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "address to bind (host:port, default from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve [out-dir]",
	Short: "Preview the export the way a single-shell host serves it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = conf.ServeAddr
		}
		root := conf.OutDir
		if len(args) > 0 {
			root = args[0]
		}
		srv := &preview.Server{Addr: addr, Root: root, Base: conf.Base}

		// Handle Ctrl+C
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		system.Logger.Info("starting preview", "url", fmt.Sprintf("http://%s/", addr))
		if err := srv.Start(ctx); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
		return nil
	},
}
