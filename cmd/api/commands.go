package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"emall-backend/internal/client"
	"emall-backend/internal/dto"
	"emall-backend/internal/repository"

	"github.com/spf13/cobra"
)

var (
	envFile string

	adminName     string
	adminEmail    string
	adminPassword string

	forceReset bool
)

var rootCmd = &cobra.Command{
	Use:   "emall-api",
	Short: "E-mall backend HTTP API",
	Long: `E-mall backend: shops, products, carts, checkout, subscriptions and
admin reporting over a relational store.

Runs the HTTP server when no subcommand is given.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := client.Migrate(app.db); err != nil {
			return err
		}
		app.log.Info().Msg("schema migrated")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert categories, default subscription prices and an admin account",
	Long: `Insert the reference rows the API expects. Safe to run repeatedly.

Examples:
  emall-api seed --admin-email admin@emall.local --admin-password s3cret!`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every table and recreate the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forceReset {
			return errors.New("reset deletes all data; pass --force to continue")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if app.cfg.Environment.IsProduction() {
			return errors.New("refusing to reset a production database")
		}
		if err := client.Reset(app.db); err != nil {
			return err
		}
		app.log.Warn().Msg("database reset")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (optional)")

	seedCmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "Admin display name")
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", os.Getenv("ADMIN_EMAIL"), "Admin email; skipped when empty")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Admin password")

	resetCmd.Flags().BoolVar(&forceReset, "force", false, "Confirm dropping all tables")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, resetCmd)
}

func runServe(ctx context.Context) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if app.cfg.Database.AutoMigrate {
		if err := client.Migrate(app.db); err != nil {
			return err
		}
	}

	srv := app.server()
	addr := app.cfg.HTTP.Address()

	errCh := make(chan error, 1)
	go func() {
		app.log.Info().Str("addr", addr).Msg("starting HTTP server")
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	app.log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	app.log.Info().Msg("server stopped")
	return nil
}

func runSeed(ctx context.Context) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if err := client.Migrate(app.db); err != nil {
		return err
	}

	if err := repository.NewCategoryRepository(app.db).Seed(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	subscriptions := repository.NewSubscriptionRepository(app.db)
	prices, err := subscriptions.Prices(ctx)
	if err != nil {
		return fmt.Errorf("read subscription prices: %w", err)
	}
	if err := subscriptions.SavePrices(ctx, prices); err != nil {
		return fmt.Errorf("seed subscription prices: %w", err)
	}

	if adminEmail == "" {
		app.log.Info().Msg("seeded reference data; no admin email given")
		return nil
	}

	created, err := app.services.Auth.EnsureAdmin(ctx, &dto.RegisterRequest{
		FullName: adminName,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	app.log.Info().Str("admin_email", adminEmail).Bool("admin_created", created).Msg("seeded reference data")
	return nil
}
