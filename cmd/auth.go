package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"apsmcp/internal/app"
	"apsmcp/internal/oauth"
)

var (
	authQuiet     bool
	loginScope    string
	loginPort     int
	statusCheck   bool
	authLogOutput io.Writer = os.Stderr
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the user session",
	Long: `Manage the interactive user session.

Without a session every tool call uses an application token obtained with
the client credentials. Some data, such as issues, is only visible to a
signed-in user.

Examples:
  apsmcp auth login                       # Sign in through the browser
  apsmcp auth login --scope "data:read account:read"
  apsmcp auth status                      # Show credentials and session
  apsmcp auth status --check              # Also verify or refresh the token
  apsmcp auth logout                      # Forget the session`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	Long: `Opens the authorize page in a browser and waits for the redirect on
http://localhost:<port>/callback. The session is stored in session.json next
to config.yaml; a running 'apsmcp serve' picks it up automatically.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential and session status",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

// authPrint prints a formatted message only if the --quiet flag is not set.
func authPrint(format string, args ...interface{}) {
	if !authQuiet {
		fmt.Printf(format, args...)
	}
}

// loadServices bootstraps configuration and services for one-shot commands.
func loadServices() (*app.Services, error) {
	cfg := app.NewConfig(rootDebug, rootConfigPath, "", GetVersion())
	if err := app.LoadSettings(cfg, authLogOutput); err != nil {
		return nil, err
	}
	return app.InitializeServices(cfg)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	creds, err := services.Credentials()
	if err != nil {
		return err
	}

	scope := loginScope
	if scope == "" {
		scope = services.Settings.Auth.Scope
	}
	port := loginPort
	if port == 0 {
		port = services.Settings.Auth.CallbackPort
	}

	var s *spinner.Spinner
	if !authQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Waiting for the browser sign-in..."
	}

	_, err = services.Session.Login(cmd.Context(), oauth.LoginOptions{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scope:        scope,
		CallbackPort: port,
		OnAuthURL: func(url string) {
			authPrint("Opening the browser to sign in. If it does not open, visit:\n\n  %s\n\n", url)
			if s != nil {
				s.Start()
			}
		},
	})
	if s != nil {
		s.Stop()
	}
	if err != nil {
		authPrint("%s %v\n", text.FgRed.Sprint("✗"), err)
		return err
	}

	status := services.Session.Status()
	authPrint("%s Signed in", text.FgGreen.Sprint("✓"))
	if status.ExpiresAt != nil {
		authPrint(", token expires %s", formatExpiryWithDirection(*status.ExpiresAt))
	}
	authPrint("\n")
	return nil
}

func runAuthLogout(_ *cobra.Command, _ []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	if services.Session.State() == oauth.StateNoSession {
		authPrint("No session stored.\n")
		return nil
	}
	if err := services.Session.Logout(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	authPrint("%s Session removed from %s\n", text.FgGreen.Sprint("✓"), services.SessionStore.Path())
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	_, credErr := services.Credentials()

	var checkResult string
	if statusCheck && credErr == nil {
		creds, _ := services.Credentials()
		if _, ok := services.Session.GetValidToken(cmd.Context(), creds.ClientID, creds.ClientSecret); ok {
			checkResult = text.FgGreen.Sprint("Valid")
		} else {
			checkResult = text.FgYellow.Sprint("No usable user token")
		}
	}

	renderStatus(cmd.OutOrStdout(), statusRows(services, credErr, services.Session.Status(), checkResult))
	return nil
}

type statusRow struct {
	key   string
	value string
}

func statusRows(services *app.Services, credErr error, st oauth.SessionStatus, checkResult string) []statusRow {
	rows := []statusRow{}

	if credErr != nil {
		rows = append(rows, statusRow{"Credentials", text.FgRed.Sprint("Not configured")})
	} else {
		rows = append(rows, statusRow{"Credentials", text.FgGreen.Sprint("Configured")})
	}
	rows = append(rows,
		statusRow{"API host", services.API.Host()},
		statusRow{"Scope", services.Tokens.Scope()},
		statusRow{"Session file", services.SessionStore.Path()},
	)

	switch st.State {
	case oauth.StateAuthenticated.String():
		rows = append(rows, statusRow{"Mode", text.FgGreen.Sprint("User session")})
	default:
		rows = append(rows, statusRow{"Mode", text.FgYellow.Sprint("Application token")})
	}

	if st.ExpiresAt != nil {
		rows = append(rows, statusRow{"Expires", formatExpiryWithDirection(*st.ExpiresAt)})
	}
	if st.State == oauth.StateAuthenticated.String() {
		if st.HasRefreshToken {
			rows = append(rows, statusRow{"Refresh", text.FgGreen.Sprint("Available")})
		} else {
			rows = append(rows, statusRow{"Refresh", text.FgYellow.Sprint("Not available (login again on expiry)")})
		}
	}
	if st.LastRefreshError != "" {
		rows = append(rows, statusRow{"Last refresh", text.FgRed.Sprint(st.LastRefreshError)})
	}
	if checkResult != "" {
		rows = append(rows, statusRow{"Check", checkResult})
	}
	if credErr != nil {
		rows = append(rows, statusRow{"Hint", credErr.Error()})
	}
	return rows
}

func renderStatus(out io.Writer, rows []statusRow) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	for _, r := range rows {
		t.AppendRow(table.Row{r.key, r.value})
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress progress output")
	authLoginCmd.Flags().StringVar(&loginScope, "scope", "", "Space separated scopes (default: configured scope)")
	authLoginCmd.Flags().IntVar(&loginPort, "port", 0, "Callback listener port (default: configured port)")
	authStatusCmd.Flags().BoolVar(&statusCheck, "check", false, "Verify the user token, refreshing it when needed")
}
