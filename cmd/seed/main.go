package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/config"
	"github.com/spec-kit/staff-directory/internal/observability"
	"github.com/spec-kit/staff-directory/internal/persistence"
	"github.com/spec-kit/staff-directory/internal/repository"
	"github.com/spec-kit/staff-directory/internal/seed"
	"github.com/spec-kit/staff-directory/internal/service"
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

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := seed.Reset(ctx, pg.PoolHandle()); err != nil {
		logger.Fatal("failed to clear tables", zap.Error(err))
	}

	credentials := service.NewCredentialStore(repository.NewUserRepository(pg.PoolHandle()), cfg.Auth.BcryptCost)
	res, err := seed.Run(ctx, repository.NewEmployeeRepository(pg.PoolHandle()), credentials, logger)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.Int("employees", len(res.Employees)),
		zap.String("admin", seed.Admin.Username+" / "+seed.Admin.Password),
		zap.String("employee", seed.Employee.Username+" / "+seed.Employee.Password))
}
