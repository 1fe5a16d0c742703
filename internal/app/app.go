package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tim1119/school-results-server/internal/config"
	handler "github.com/Tim1119/school-results-server/internal/http"
	"github.com/Tim1119/school-results-server/internal/repository"
	"github.com/Tim1119/school-results-server/internal/service"
	"github.com/Tim1119/school-results-server/pkg/cache"
	dbbuilder "github.com/Tim1119/school-results-server/pkg/database"
	"github.com/Tim1119/school-results-server/pkg/httpserver"

	"go.uber.org/zap"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDSN),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized",
		zap.String("driver", cfg.DBDriver),
		zap.String("dsn", cfg.DBDSN))

	if err := repository.EnsureSchema(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	resultRepo := repository.NewTermResultRepository(dbPool, repoFlavor(cfg.DBDriver))

	resultService := service.NewResultService(resultRepo, logger)

	handlers := handler.NewHandlers(resultService, cacheClient, logger, 10*time.Minute)

	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithLogging(true),
		httpserver.WithAllowedOrigins(cfg.AllowedOrigins...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	handlers.Register(httpServer.Router())

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		httpServer: httpServer,
	}, nil
}

func repoFlavor(driver string) repository.Flavor {
	if driver == "pgx" || driver == "postgres" {
		return repository.FlavorPostgres
	}
	return repository.FlavorSQLite
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")

	_ = a.logger.Sync()
	return nil
}
