package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cfg "portalctl/internal/config"
)

func init() { rootCmd.AddCommand(configCmd) }

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration and where it came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cfg.Resolve(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		b, err := conf.Marshal()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, mutedStyle.Render("# "+p))
		fmt.Fprint(out, string(b))
		if state, err := cfg.StatePath(); err == nil {
			fmt.Fprintln(out, mutedStyle.Render("# session state: "+state))
		}
		return nil
	},
}
