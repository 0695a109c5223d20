package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/audit"
	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/config"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/handlers"
	"github.com/ekaya-inc/manpower-engine/pkg/logging"
	"github.com/ekaya-inc/manpower-engine/pkg/mcp"
	mcpauth "github.com/ekaya-inc/manpower-engine/pkg/mcp/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/mcp/tools"
	"github.com/ekaya-inc/manpower-engine/pkg/middleware"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
	"github.com/ekaya-inc/manpower-engine/pkg/retry"
	"github.com/ekaya-inc/manpower-engine/pkg/screening"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
		zap.Int64("upload_max_bytes", cfg.Upload.MaxBytes),
		zap.Bool("mcp_enabled", cfg.MCP.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The database may still be starting when the server comes up.
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		_ = sqlDB.Close()
		return err
	}
	_ = sqlDB.Close()

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
		Audience:           cfg.Auth.Audience,
	})
	if err != nil {
		return fmt.Errorf("failed to create JWKS client: %w", err)
	}
	defer jwksClient.Close()
	authService := auth.NewAuthService(jwksClient, logger)

	// Repositories
	warehouseRepo := repositories.NewWarehouseRepository()
	categoryRepo := repositories.NewCategoryRepository()
	productivityRepo := repositories.NewProductivityRepository()
	demandRepo := repositories.NewDemandRepository()
	requirementRepo := repositories.NewRequirementRepository()
	resultRepo := repositories.NewResultRepository()

	// Services
	auditor := audit.NewSecurityAuditor(logger)
	screener := screening.NewScreener(auditor)
	registry := services.NewCategoryRegistry(db, categoryRepo, logger)

	warehouseService := services.NewWarehouseService(db, db, warehouseRepo, screener, logger)
	categoryService := services.NewCategoryService(db, db, categoryRepo, registry, screener, logger)
	productivityService := services.NewProductivityService(db, db, productivityRepo, logger)
	demandService := services.NewDemandService(db, db, demandRepo, warehouseRepo, productivityRepo, registry, logger)
	requirementService := services.NewRequirementService(db, db, requirementRepo, logger)
	resultService := services.NewResultService(db, resultRepo, requirementRepo)
	uploadService := services.NewUploadService(db, db, warehouseRepo, productivityRepo, demandRepo, registry, screener, auditor, logger)
	planningService := services.NewPlanningService(db, db, services.PlanningRepositories{
		Warehouses:   warehouseRepo,
		Requirements: requirementRepo,
		Demand:       demandRepo,
		Productivity: productivityRepo,
		Results:      resultRepo,
	}, services.NewRandomStrategy(cfg.Planning.Seed), logger)

	if cfg.Seed.CategoriesFile != "" {
		if err := seedCategories(ctx, cfg.Seed.CategoriesFile, categoryService, logger); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	authMiddleware := auth.NewMiddleware(authService, logger)

	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewWarehouseHandler(warehouseService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCategoryHandler(categoryService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProductivityHandler(productivityService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDemandHandler(demandService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewUploadHandler(uploadService, cfg.Upload.MaxBytes, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPlanningHandler(planningService, requirementService, resultService, logger).RegisterRoutes(mux, authMiddleware)

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer("manpower-engine", cfg.Version, logger)
		tools.RegisterPlanningTools(mcpServer.MCP(), &tools.PlanningToolDeps{
			Warehouses:   warehouseService,
			Categories:   categoryService,
			Demand:       demandService,
			Productivity: productivityService,
			Results:      resultService,
			Registry:     registry,
			Logger:       logger,
		})
		handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux, mcpauth.NewMiddleware(authService, logger))
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		tlsEnabled := cfg.TLSCertPath != ""
		logger.Info("Starting manpower-engine",
			zap.String("addr", server.Addr),
			zap.Bool("tls", tlsEnabled),
			zap.String("version", cfg.Version))
		if tlsEnabled {
			serveErr <- server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// seedCategories creates the categories listed in path that do not exist yet.
func seedCategories(ctx context.Context, path string, categoryService services.CategoryService, logger *zap.Logger) error {
	records, err := services.LoadCategorySeed(path)
	if err != nil {
		return err
	}
	n, err := categoryService.Ensure(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	logger.Info("Ensured seed categories", zap.String("file", path), zap.Int("categories", n))
	return nil
}
