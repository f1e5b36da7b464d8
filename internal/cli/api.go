package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"portalctl/internal/apiclient"
)

var (
	apiPage  int
	apiLimit int
)

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.AddCommand(apiGetCmd)
	apiGetCmd.Flags().IntVar(&apiPage, "page", 0, "page number for list endpoints")
	apiGetCmd.Flags().IntVar(&apiLimit, "limit", 0, "items per page for list endpoints")
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Call the portal API with the stored session",
}

var apiGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "GET a path and print the JSON response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		var out any
		if apiPage > 0 || apiLimit > 0 {
			page, err := apiclient.List[json.RawMessage](cmd.Context(), c, args[0], apiPage, apiLimit)
			if err != nil {
				return userError(err)
			}
			out = map[string]any{"data": page.Data, "count": page.Count, "pages": page.Pages(apiLimit)}
		} else {
			var raw json.RawMessage
			if err := c.Get(cmd.Context(), args[0], &raw); err != nil {
				return userError(err)
			}
			out = raw
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}
