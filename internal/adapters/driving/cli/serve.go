package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/adapters/driving/mcp"
	"github.com/custodia-labs/factsheets/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep datasets fresh and serve factsheets over MCP",
	Long: `Starts the background scheduler that refreshes every dataset on its
interval, and serves lookups over the Model Context Protocol.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead. In HTTP mode Prometheus
metrics are served on /metrics.

Examples:
  # Stdio mode (default)
  factsheets serve

  # HTTP mode with metrics
  factsheets serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Factsheet: factsheetService,
		Scheduler: scheduler,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler stopped: %v", err)
			}
		}()
		defer scheduler.Stop() //nolint:errcheck
	}

	if port > 0 {
		if metricsHandler != nil {
			server.Handle("/metrics", metricsHandler)
		}
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
