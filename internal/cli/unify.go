package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"portalctl/internal/unify"
)

var (
	unifyBase    string
	unifyExclude []string
	unifyDryRun  bool
	unifyForce   bool
	unifyJSON    bool
)

func init() {
	rootCmd.AddCommand(unifyCmd)
	unifyCmd.Flags().StringVar(&unifyBase, "base", "", "base document used as the shell template (default from config)")
	unifyCmd.Flags().StringSliceVar(&unifyExclude, "exclude", nil, "doublestar patterns of routes to leave alone")
	unifyCmd.Flags().BoolVar(&unifyDryRun, "dry-run", false, "report what would change without writing")
	unifyCmd.Flags().BoolVar(&unifyForce, "force", false, "unify even when the export is already unified")
	unifyCmd.Flags().BoolVar(&unifyJSON, "json", false, "output JSON report")
}

var unifyCmd = &cobra.Command{
	Use:   "unify [out-dir]",
	Short: "Rewrite a static export so every route shares one HTML shell",
	Long: "Collects the union of external scripts across all exported pages, builds one shell " +
		"from the base document, and rewrites every page as that shell carrying its own hydration payload.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUnifier(args)
		u.DryRun = unifyDryRun
		u.Force = unifyForce
		rep, err := u.Run(cmd.Context())
		if err != nil {
			return err
		}
		if unifyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

// newUnifier applies config, then flags, then the positional directory.
func newUnifier(args []string) *unify.Unifier {
	opts := conf.UnifyOptions()
	if unifyBase != "" {
		opts.Base = unifyBase
	}
	if len(unifyExclude) > 0 {
		opts.Exclude = append(append([]string(nil), opts.Exclude...), unifyExclude...)
	}
	root := conf.OutDir
	if len(args) > 0 {
		root = args[0]
	}
	return &unify.Unifier{Root: root, Options: opts}
}

func printReport(w io.Writer, rep *unify.Report) {
	switch {
	case rep.Empty:
		fmt.Fprintf(w, "%s no HTML files in %s\n", warnStyle.Render("WARN"), rep.Root)
		return
	case rep.AlreadyUnified:
		fmt.Fprintf(w, "%s %s is already unified (use --force to rebuild)\n", okStyle.Render("OK  "), rep.Root)
		return
	}
	for _, r := range rep.Unified {
		fmt.Fprintf(w, "%s %s\n", okStyle.Render("OK  "), r)
	}
	for _, r := range rep.Skipped {
		fmt.Fprintf(w, "%s %s %s\n", warnStyle.Render("SKIP"), r, mutedStyle.Render("(no hydration payload)"))
	}
	verb := "unified"
	if rep.DryRun {
		verb = "would unify"
	}
	fmt.Fprintf(w, "\nSummary: %s %d file(s) from base %s, %d script(s) in shell, %d skipped\n",
		verb, len(rep.Unified), rep.Base, len(rep.Scripts), len(rep.Skipped))
}
