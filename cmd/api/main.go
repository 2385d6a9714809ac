package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/api/graph"
	httptransport "github.com/spec-kit/staff-directory/internal/api/http"
	"github.com/spec-kit/staff-directory/internal/api/http/handlers"
	"github.com/spec-kit/staff-directory/internal/auth"
	"github.com/spec-kit/staff-directory/internal/cache"
	"github.com/spec-kit/staff-directory/internal/config"
	"github.com/spec-kit/staff-directory/internal/events"
	"github.com/spec-kit/staff-directory/internal/observability"
	"github.com/spec-kit/staff-directory/internal/persistence"
	"github.com/spec-kit/staff-directory/internal/repository"
	"github.com/spec-kit/staff-directory/internal/seed"
	"github.com/spec-kit/staff-directory/internal/service"
	"github.com/spec-kit/staff-directory/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	checks := map[string]handlers.Pinger{}
	if pg.Enabled() {
		checks["postgres"] = pg
	}

	var resultCache cache.Store
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		checks["redis"] = redis
		resultCache = cache.NewRedis(redis.Client, cfg.Cache.Prefix, cfg.Cache.TTL(), logger)
	default:
		resultCache = cache.NewMemory(cfg.Cache.TTL())
	}

	var (
		userRepo     repository.UserRepository
		employeeRepo repository.EmployeeRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		employeeRepo = repository.NewEmployeeRepository(pg.PoolHandle())
	} else {
		store := repository.NewMemoryStore()
		userRepo, employeeRepo = store.Users(), store.Employees()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     userRepo,
		EmployeeRepo: employeeRepo,
		Tokens:       tokens,
		BcryptCost:   cfg.Auth.BcryptCost,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		EmployeeRepo: employeeRepo,
		Cache:        resultCache,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})

	if !pg.Enabled() {
		if _, err := seed.Run(ctx, employeeRepo, authService.Credentials(), logger); err != nil {
			logger.Fatal("failed to seed in-memory storage", zap.Error(err))
		}
	}

	executor, err := graph.NewExecutor(graph.Dependencies{
		Directory: directoryService,
		Auth:      authService,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		logger.Fatal("failed to build graphql schema", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		FrontendURL: cfg.App.FrontendURL,
		Production:  cfg.App.Env == "production",
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		GraphQL:        handlers.NewGraphQLHandler(executor),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, authService.Credentials(), logger),
		RateLimiter:    httptransport.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("server ready", zap.String("addr", cfg.App.Addr()), zap.String("graphql", "/graphql"))

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
