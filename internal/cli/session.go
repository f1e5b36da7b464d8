package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"portalctl/internal/session"
)

var sessionJSON bool

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd, sessionClearCmd, sessionSchemaCmd)
	sessionShowCmd.Flags().BoolVar(&sessionJSON, "json", false, "print the stored session as JSON")
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear the locally stored session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sessionStore()
		if err != nil {
			return err
		}
		sess, err := st.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("not signed in"))
				return nil
			}
			return err
		}
		out := cmd.OutOrStdout()
		if sessionJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(sess)
		}
		fmt.Fprintln(out, titleStyle.Render("Session"))
		fmt.Fprintf(out, "  user:          %s (#%d)\n", sess.UserName, sess.UserID)
		fmt.Fprintf(out, "  role:          %s (%s)\n", sess.Role.Name, sess.Role.Code)
		fmt.Fprintf(out, "  business date: %s\n", sess.BusinessDate)
		fmt.Fprintf(out, "  department:    %d\n", sess.DepartmentID)
		if id, ok := sess.OrganisationID(); ok {
			fmt.Fprintf(out, "  organisation:  %s\n", id)
		}
		fmt.Fprintf(out, "  token:         %s\n", mask(sess.Token))
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored session (log out)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sessionStore()
		if err != nil {
			return err
		}
		if err := st.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s session cleared\n", okStyle.Render("✓"))
		return nil
	},
}

var sessionSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := session.MarshalSchema(session.Schema())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func mask(tok string) string {
	if len(tok) <= 8 {
		return "********"
	}
	return tok[:4] + "…" + tok[len(tok)-4:]
}
