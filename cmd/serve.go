package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"apsmcp/internal/app"
)

var serveMetricsAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tools over stdio",
	Long: `Starts the MCP server on stdin/stdout. Register this command with your
AI assistant, for example:

  {"command": "apsmcp", "args": ["serve"]}

Logs are written to stderr. With --metrics-address (or metrics.address in
config.yaml) a Prometheus endpoint is served at http://<address>/metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := app.NewConfig(rootDebug, rootConfigPath, serveMetricsAddress, GetVersion())

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(cmd.Context())
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveMetricsAddress, "metrics-address", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
}
