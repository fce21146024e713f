// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP API",
	Long: `Serve starts the HTTP API. The JWT signing secret comes from
.secrets/jwt-secret or RESEARCH_PORTAL_AUTH_SECRET and must be at least
32 bytes. SIGINT and SIGTERM trigger a graceful shutdown.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("db", "", "SQLite database path (overrides database.path)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("database.path", serveCmd.Flags().Lookup("db"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		zap.String("addr", a.cfg.Server.Addr),
		zap.String("database", a.cfg.Database.Path),
		zap.String("version", version))
	return server.New(a.cfg, a.services(), logger.Named("http")).Run(ctx)
}
