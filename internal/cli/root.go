package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfg "portalctl/internal/config"
	"portalctl/internal/system"
)

var (
	configPath string
	verbose    bool
	conf       = cfg.Default()
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "portalctl – patient portal build and client tooling",
	Long:  "portalctl unifies the portal's static export into one HTML shell, previews it, and manages the local API session.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		system.SetVerbose(verbose)
		p, err := cfg.Resolve(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		c, err := cfg.Load(p)
		if err != nil {
			return err
		}
		conf = c
		system.Logger.Debug("config loaded", "path", p)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./portalctl.yaml, then user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error:"), err)
		os.Exit(1)
	}
}
