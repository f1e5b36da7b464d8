package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"portalctl/internal/session"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when empty)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin instead of prompting")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal API and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(loginEmail)
		var password string
		if loginPasswordStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if email == "" || password == "" {
			if err := loginForm(&email, &password); err != nil {
				return err
			}
		}
		if email == "" || password == "" {
			return errors.New("please enter both email and password")
		}

		var data map[string]any
		err := newClient().Post(cmd.Context(), conf.LoginPath, map[string]string{
			"email":    email,
			"password": password,
		}, &data)
		if err != nil {
			return userError(err)
		}
		sess, err := session.FromLogin(data, email, time.Now())
		if err != nil {
			return fmt.Errorf("login error: %w", err)
		}
		st, err := sessionStore()
		if err != nil {
			return err
		}
		if err := st.Save(sess); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s signed in as %s\n", okStyle.Render("✓"), sess.UserName)
		if id := session.PatientID(data); id != 0 {
			fmt.Fprintf(out, "  patient: %d\n", id)
		} else {
			fmt.Fprintln(out, mutedStyle.Render("  no patient id in response, select a patient in the portal"))
		}
		return nil
	},
}

func loginForm(email, password *string) error {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		return errors.New("no terminal for the login form, pass --email and --password-stdin")
	}
	notEmpty := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}

	theme := huh.ThemeCharm()
	theme.FieldSeparator = lipgloss.NewStyle()
	theme.Focused.Title = theme.Focused.Title.Width(12).Foreground(colorPrimary).Bold(true)
	theme.Blurred.Title = theme.Blurred.Title.Width(12).Foreground(lipgloss.Color("7"))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Patient portal").Description("Sign in with your portal account"),
			huh.NewInput().Title("Email").Value(email).Validate(notEmpty),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).Validate(notEmpty),
		),
	).WithTheme(theme).WithWidth(60)
	return form.Run()
}
