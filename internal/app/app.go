// Package app assembles the import components shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/config"
	"github.com/spec-kit/okta-import/internal/events"
	oktaidp "github.com/spec-kit/okta-import/internal/idp/okta"
	"github.com/spec-kit/okta-import/internal/observability"
	"github.com/spec-kit/okta-import/internal/persistence"
	"github.com/spec-kit/okta-import/internal/provisioning"
	"github.com/spec-kit/okta-import/internal/repository"
	"github.com/spec-kit/okta-import/internal/service"
	"github.com/spec-kit/okta-import/internal/subscribers"
)

// Components are the wired collaborators of an import process.
type Components struct {
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Admins     repository.AdminRepository
	Runs       repository.ImportRunRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Imports    *service.ImportService
}

// Build connects the stores, the Okta client and the import pipeline.
// Postgres and Redis are optional; Okta is required.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	idp, err := oktaidp.NewClient(ctx, cfg.Okta, logger)
	if err != nil {
		return nil, fmt.Errorf("okta client: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	c := &Components{
		Postgres:   pg,
		Redis:      persistence.NewRedis(cfg.Redis, logger),
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    observability.NewMetrics(),
	}

	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				c.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		c.Admins = repository.NewAdminRepository(pg.PoolHandle())
		c.Runs = repository.NewImportRunRepository(pg.PoolHandle())
	} else {
		c.Admins = repository.NewMemoryAdminRepository()
		c.Runs = repository.NewMemoryImportRunRepository()
	}

	var cache repository.AccountCache
	if c.Redis.Enabled() {
		cache = repository.NewRedisAccountCache(c.Redis.Client, cfg.Import.AccountCacheTTL())
	}
	lookup := service.NewCachedLookup(idp, cache, logger)

	subscribers.New(subscribers.Dependencies{
		Accounts: provisioning.NewAccounts(lookup),
		Apps:     idp,
		Recorder: lookup,
		Logger:   logger,
	}, subscribers.Options{
		DropInvalidEmails: cfg.Import.DropInvalidEmails,
		SkipExisting:      cfg.Import.SkipExisting,
		DefaultAppID:      cfg.Provisioning.DefaultAppID,
	}).Register(c.Dispatcher)

	pipeline := provisioning.NewPipeline(idp, c.Dispatcher, logger, provisioning.Options{
		CheckPasswordPerEmail: cfg.Import.CheckPasswordPerEmail,
	})
	c.Imports = service.NewImportService(pipeline, c.Runs, cfg.Provisioning.Defaults(), c.Metrics, logger, service.ImportServiceConfig{
		MaxEmailsPerBatch: cfg.Import.MaxEmailsPerBatch,
		ListLimit:         cfg.Import.ListLimit,
	})
	return c, nil
}

// Close releases store connections.
func (c *Components) Close() {
	c.Redis.Close()
	c.Postgres.Close()
}
