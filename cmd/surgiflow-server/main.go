package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/surgiflow/surgiflow/internal/config"
	"github.com/surgiflow/surgiflow/internal/domain/audit"
	"github.com/surgiflow/surgiflow/internal/domain/cases"
	"github.com/surgiflow/surgiflow/internal/domain/forms"
	"github.com/surgiflow/surgiflow/internal/domain/planning"
	"github.com/surgiflow/surgiflow/internal/platform/auth"
	"github.com/surgiflow/surgiflow/internal/platform/db"
	"github.com/surgiflow/surgiflow/internal/platform/middleware"
)

// caseDirectoryAdapter exposes the slice of the case service the planning
// and forms packages depend on, avoiding circular imports between the
// domain packages.
type caseDirectoryAdapter struct {
	service *cases.Service
}

func (a *caseDirectoryAdapter) CaseStatus(ctx context.Context, caseID uuid.UUID) (string, bool, error) {
	c, err := a.service.GetCase(ctx, caseID)
	if err != nil {
		return "", false, err
	}
	if c == nil {
		return "", false, nil
	}
	return c.Status, true, nil
}

func (a *caseDirectoryAdapter) MarkPlanning(ctx context.Context, actorID string, caseID uuid.UUID) error {
	return a.service.MarkPlanning(ctx, actorID, caseID)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "surgiflow-server",
		Short: "Surgical workflow API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		color.Yellow("WARNING: dev auth is enabled, every request runs as an admin")
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	apiV1 := e.Group("/api/v1")

	// Repositories
	txRunner := &db.PoolTxRunner{Pool: pool}
	auditRepo := audit.NewRepoPG(pool)
	caseRepo := cases.NewRepoPG(pool)
	bookingRepo := cases.NewBookingRepoPG(pool)
	inviteRepo := cases.NewInviteRepoPG(pool)
	planRepo := planning.NewPlanRepoPG(pool)
	consentRepo := planning.NewConsentRepoPG(pool)
	imageRepo := planning.NewImageRepoPG(pool)
	formRepo := forms.NewFormRepoPG(pool)
	recordRepo := forms.NewProcedureRecordRepoPG(pool)

	// Services. The case service needs readiness and gate verdicts from
	// planning and forms; those need case lookups back. The adapter plus
	// late binding below keeps each package one-directional.
	auditService := audit.NewService(auditRepo, logger)

	caseService := cases.NewService(caseRepo, bookingRepo, inviteRepo, nil, nil, auditService, txRunner, logger)
	caseDir := &caseDirectoryAdapter{service: caseService}

	planningService := planning.NewService(planRepo, consentRepo, imageRepo, caseDir, auditService, txRunner, logger)
	formsService := forms.NewService(formRepo, recordRepo, caseDir, auditService, txRunner, logger)
	caseService.BindGates(planningService, formsService)

	// Handlers
	audit.NewHandler(auditService).RegisterRoutes(apiV1)
	cases.NewHandler(caseService).RegisterRoutes(apiV1)
	planning.NewHandler(planningService).RegisterRoutes(apiV1)
	forms.NewHandler(formsService).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
