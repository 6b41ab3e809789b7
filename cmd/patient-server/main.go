package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/patientsvc/internal/config"
	"github.com/ehr/patientsvc/internal/domain/careguard"
	"github.com/ehr/patientsvc/internal/domain/encounter"
	"github.com/ehr/patientsvc/internal/domain/patient"
	"github.com/ehr/patientsvc/internal/platform/db"
	"github.com/ehr/patientsvc/internal/platform/metrics"
	"github.com/ehr/patientsvc/internal/platform/middleware"
	"github.com/ehr/patientsvc/internal/platform/sqlitedb"
	"github.com/ehr/patientsvc/internal/platform/store"
	"github.com/ehr/patientsvc/internal/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient-server",
		Short: "Patient and encounter record API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo patients and encounters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.close()

			_, err = seed.Load(ctx, patient.NewService(st.patients), encounter.NewService(st.encounters), logger)
			return err
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the patient and encounter tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if cfg.StoreBackend == config.BackendMemory {
				return fmt.Errorf("schema: STORE_BACKEND %q has no schema", cfg.StoreBackend)
			}
			st, err := openStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			st.close()
			logger.Info().Str("backend", st.backend).Msg("schema applied")
			return nil
		},
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// stores bundles the repositories of one backend with its transaction
// runner and health probe.
type stores struct {
	backend    string
	patients   patient.Repository
	encounters encounter.Repository
	tx         store.Transactor
	health     db.Pinger
	close      func()
}

// openStores connects to the configured backend. SQL backends get their
// tables created if missing.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			backend:    cfg.StoreBackend,
			patients:   patient.NewRepo(pool),
			encounters: encounter.NewRepo(pool),
			tx:         db.NewTxManager(pool),
			health:     pool,
			close:      pool.Close,
		}, nil

	case config.BackendSQLite:
		sdb, err := sqlitedb.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{
			backend:    cfg.StoreBackend,
			patients:   patient.NewSQLiteRepo(sdb),
			encounters: encounter.NewSQLiteRepo(sdb),
			tx:         sdb,
			health:     sdb,
			close:      func() { _ = sdb.Close() },
		}, nil

	case config.BackendMemory:
		return &stores{
			backend:    cfg.StoreBackend,
			patients:   patient.NewMemoryRepo(),
			encounters: encounter.NewMemoryRepo(),
			tx:         &store.Serializer{},
			health:     db.PingFunc(func(context.Context) error { return nil }),
			close:      func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newServer(cfg *config.Config, st *stores, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	rec := metrics.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(rec.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(st.backend, st.health))
	e.GET("/metrics", echo.WrapHandler(rec.Handler()))

	// Domain
	patientSvc := patient.NewService(st.patients)
	encounterSvc := encounter.NewService(st.encounters)
	guard := careguard.New(patientSvc, encounterSvc, st.tx, logger)

	api := e.Group("")
	patient.NewHandler(patientSvc, guard).RegisterRoutes(api)
	encounter.NewHandler(encounterSvc).RegisterRoutes(api)

	return e
}

func runServer() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open record store")
	}
	defer st.close()
	logger.Info().Str("backend", st.backend).Msg("record store ready")

	if cfg.SeedData {
		if _, err := seed.Load(ctx, patient.NewService(st.patients), encounter.NewService(st.encounters), logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to load seed data")
		}
	}

	e := newServer(cfg, st, logger)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
