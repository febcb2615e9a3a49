// Command mcp-server exposes gocas tools as an HTTP endpoint for AI agent
// frameworks.
//
// Usage:
//
//	mcp-server --port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/logging"
	"github.com/njchilds90/gocas/internal/server"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		port       int
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:          "mcp-server",
		Short:        "Serve gocas tool calls over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Addr = fmt.Sprintf(":%d", port)
			}
			logger, err := logging.New(cfg.Logging, verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("routes",
				zap.String("POST /tool", "execute a tool call"),
				zap.String("GET /schema", "tool schema for agent registration"),
				zap.String("GET /health", "health check"),
			)
			return server.New(cfg, logger).ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides server.addr)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
