package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"apsmcp/internal/config"
	"apsmcp/internal/oauth"
	pkgoauth "apsmcp/pkg/oauth"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates credentials or a login are missing.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates a token exchange or the login flow failed.
	ExitCodeAuthFailed = 3
)

var (
	rootConfigPath string
	rootDebug      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "apsmcp",
	Short: "MCP server for construction and document management APIs",
	Long: `apsmcp exposes hubs, projects, folders, file versions, issues and
submittals to AI assistants as MCP tools over stdio.

Application credentials come from APS_CLIENT_ID and APS_CLIENT_SECRET or
from ~/.config/apsmcp/config.yaml. Run 'apsmcp auth login' to act as a user.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic exit code on error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apsmcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var ce config.ConfigurationError
	if errors.As(err, &ce) && ce.ErrorType == config.ErrorTypeCredentials {
		return ExitCodeAuthRequired
	}
	if errors.Is(err, oauth.ErrNoSession) {
		return ExitCodeAuthRequired
	}

	if pkgoauth.IsTokenError(err) || oauth.IsAuthorizationError(err) || errors.Is(err, oauth.ErrLoginTimeout) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default ~/.config/apsmcp)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
