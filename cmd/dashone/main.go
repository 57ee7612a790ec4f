package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/emilianohg/dashone/internal/api"
	"github.com/emilianohg/dashone/internal/config"
	"github.com/emilianohg/dashone/internal/dashboard"
	"github.com/emilianohg/dashone/internal/db"
	"github.com/emilianohg/dashone/internal/logging"
	"github.com/emilianohg/dashone/internal/provider"
	"github.com/emilianohg/dashone/internal/provider/fixture"
	"github.com/emilianohg/dashone/internal/seed"
	"github.com/emilianohg/dashone/internal/tui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dashone",
	Short: "Employee session tracking dashboard",
	Long: `Dashone shows recorded employee sessions with search, program filtering
and totals. Without a configured backend it runs on built-in demo data.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		// The TUI owns the terminal, so logs go to a file.
		logger, closer, err := openLogFile(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := provider.Open(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening backend: %v\n", err)
			os.Exit(1)
		}
		defer backend.Close()

		search, _ := cmd.Flags().GetString("search")
		program, _ := cmd.Flags().GetString("program")

		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			if err := tui.PrintSummary(ctx, os.Stdout, backend, logger, tui.Options{Search: search, Program: program}); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to Load Dashboard: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if err := tui.Run(backend, logger, tui.Options{Search: search, Program: program}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard as JSON over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := logging.New(os.Stdout, cfg.LogLevel)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.ListenAddr
		}

		backend, err := provider.Open(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("open backend", "error", err)
			os.Exit(1)
		}
		defer backend.Close()

		srv := &http.Server{
			Addr:         addr,
			Handler:      api.NewRouter(backend, logger),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		// Graceful shutdown
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)

		go func() {
			logger.Info("dashboard server starting", "addr", addr, "backend", backend.Name)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		}()

		<-done
		logger.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}

		logger.Info("server stopped")
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|version]",
	Short: "Apply schema migrations to the configured sql backend",
	Long: `Apply the embedded schema migrations to the sqlite or postgres backend.

Examples:
  dashone migrate           # Apply pending migrations
  dashone migrate down      # Revert all migrations
  dashone migrate version   # Show current and latest version`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "version"},
	Run: func(cmd *cobra.Command, args []string) {
		action := "up"
		if len(args) > 0 {
			action = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		m, cleanup, err := openMigrator(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		switch action {
		case "up":
			err = m.Up()
		case "down":
			err = m.Down()
		case "version":
		default:
			fmt.Fprintf(os.Stderr, "Invalid argument: %s (expected up, down or version)\n", action)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running migrations: %v\n", err)
			os.Exit(1)
		}

		status, err := m.Status()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading migration status: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Backend: %s\n", cfg.ResolvedBackend())
		fmt.Printf("Version: %d (latest %d)\n", status.CurrentVersion, status.LatestVersion)
		if status.Dirty {
			fmt.Println("Warning: database is marked dirty; fix the failed migration by hand.")
		}
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo data set into an empty sql backend",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := logging.New(os.Stderr, cfg.LogLevel)

		if cfg.ResolvedBackend() == config.BackendPostgres {
			m, cleanup, err := openMigrator(cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			err = m.Up()
			cleanup()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error running migrations: %v\n", err)
				os.Exit(1)
			}
		}

		ctx := context.Background()
		backend, err := provider.Open(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening backend: %v\n", err)
			os.Exit(1)
		}
		defer backend.Close()

		if backend.Store == nil {
			fmt.Fprintf(os.Stderr, "Backend %q cannot be seeded; use sqlite or postgres\n", backend.Name)
			os.Exit(1)
		}

		employees, sessions, err := fixture.Data()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := seed.Run(ctx, backend.Store, employees, sessions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if result.Skipped {
			fmt.Println("Employees already present, nothing seeded.")
			return
		}
		fmt.Printf("Seeded %d employees and %d sessions into %s.\n", result.Employees, result.Sessions, backend.Name)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.dashone/config.toml)")

	rootCmd.Flags().StringP("search", "s", "", "Initial employee name search")
	rootCmd.Flags().StringP("program", "p", dashboard.AllPrograms, "Initial program filter")

	serveCmd.Flags().String("addr", "", "Listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func openLogFile(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if err := config.EnsureDirectories(); err != nil {
		return nil, nil, err
	}
	logPath, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(logPath, cfg.LogLevel)
}

// openMigrator returns a migrator for the configured sql backend and a
// cleanup that releases everything it opened.
func openMigrator(cfg *config.Config) (*db.Migrator, func(), error) {
	switch cfg.ResolvedBackend() {
	case config.BackendSQLite:
		database, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		m, err := db.NewSQLiteMigrator(database)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return m, func() {
			m.Close()
			database.Close()
		}, nil

	case config.BackendPostgres:
		m, err := db.NewPostgresMigrator(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { m.Close() }, nil
	}
	return nil, nil, fmt.Errorf("backend %q has no schema to migrate; use sqlite or postgres", cfg.ResolvedBackend())
}
