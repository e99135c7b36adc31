package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yeremiapane/pc-cafe/config"
	"github.com/yeremiapane/pc-cafe/database"
	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/router"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pc-cafe",
	Short: "PC-cafe backend: accounts, seats, metered time, menu and orders",
	Long: `pc-cafe serves the REST API used by the cafe's kiosks and admin console.

Configuration comes from config.yaml (or CONFIG_PATH), .env and the
environment; JWT_SECRET and ADMIN_CODE are required.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, seed seats, start the time meter and serve HTTP (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed seats, then exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format)

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	return database.SeedSeats(db, cfg.Seats.Count, false)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedSeats(db, cfg.Seats.Count, cfg.Seats.ResetOnBoot); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live := hub.New()
	defer live.Close()

	if cfg.Metering.Enabled {
		meter := services.NewTimeMeter(db, cfg.Metering)
		meter.Start(ctx)
		defer meter.Stop()
	}

	r, err := router.SetupRouter(db, cfg, live)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Server running on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	utils.InfoLogger.Println("Server exited")
	return nil
}
