package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hrms/internal/app/server"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
)

var rootCmd = &cobra.Command{
	Use:   "hrms",
	Short: "Geofenced attendance and HR server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		return db.Migrate(cmd.Context(), pool, "migrations")
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo organization and admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		return db.Seed(cmd.Context(), pool, cfg)
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	app, err := server.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		slog.Error("server stopped", "err", err)
		return err
	}
	return nil
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
