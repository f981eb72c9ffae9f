package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/aitool"
	auditrepo "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/audit"
	backuprepo "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/backup"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/rating"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/schedule"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/template"
	"github.com/heartmarshall/eduprompt-backend/internal/auth"
	"github.com/heartmarshall/eduprompt-backend/internal/config"
	"github.com/heartmarshall/eduprompt-backend/internal/service/audit"
	"github.com/heartmarshall/eduprompt-backend/internal/service/backup"
	"github.com/heartmarshall/eduprompt-backend/internal/service/catalog"
	"github.com/heartmarshall/eduprompt-backend/internal/service/recommend"
	"github.com/heartmarshall/eduprompt-backend/internal/service/scheduler"
)

// Container is the wired service graph shared by the HTTP server and catalogctl.
type Container struct {
	Config   *config.Config
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Blobs    blob.Store
	Registry *prometheus.Registry
	Tokens   *auth.TokenManager

	Catalog   *catalog.Service
	Backup    *backup.Service
	Scheduler *scheduler.Service
	Recommend *recommend.Service
	Audit     *audit.Service
}

// Build connects to PostgreSQL and the blob store and wires every service.
// The caller owns the returned container and must Close it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	blobs, err := NewBlobStore(ctx, cfg.Blob)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}

	return Wire(cfg, logger, pool, blobs), nil
}

// Wire builds the repositories and services over an open pool and blob store.
func Wire(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, blobs blob.Store) *Container {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	txm := postgres.NewTxManager(pool)

	toolRepo := aitool.New(pool)
	templateRepo := template.New(pool)
	ratingRepo := rating.New(pool)
	backupRepo := backuprepo.New(pool)
	scheduleRepo := schedule.New(pool)
	auditRepo := auditrepo.New(pool)

	catalogSvc := catalog.NewService(
		logger, toolRepo, templateRepo, ratingRepo, backupRepo, auditRepo, auditRepo, txm,
		catalog.Config{CacheSize: cfg.Cache.Size, CacheTTL: cfg.Cache.TTL},
	)

	backupSvc := backup.NewService(
		logger, toolRepo, templateRepo, backupRepo, blobs, auditRepo, txm,
		backup.NewMetrics(reg),
		backup.Config{BlobPrefix: cfg.Backup.BlobPrefix, MaxImportItems: cfg.Backup.MaxImportItems},
		catalogSvc,
	)

	schedulerSvc := scheduler.NewService(logger, scheduleRepo, backupSvc, backupRepo, auditRepo, cfg.Backup.Location)

	recommendSvc := recommend.NewService(logger, toolRepo, templateRepo, ratingRepo, recommend.Config{
		Weights: recommend.Weights{
			Difficulty:    cfg.Recommend.DifficultyWeight,
			Category:      cfg.Recommend.CategoryWeight,
			Popularity:    cfg.Recommend.PopularityWeight,
			TrendingBonus: cfg.Recommend.TrendingBonus,
		},
		DefaultLimit: cfg.Recommend.DefaultLimit,
		MaxLimit:     cfg.Recommend.MaxLimit,
	})

	auditSvc := audit.NewService(logger, auditRepo, txm)

	return &Container{
		Config:    cfg,
		Log:       logger,
		Pool:      pool,
		Blobs:     blobs,
		Registry:  reg,
		Tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL),
		Catalog:   catalogSvc,
		Backup:    backupSvc,
		Scheduler: schedulerSvc,
		Recommend: recommendSvc,
		Audit:     auditSvc,
	}
}

// Close releases the database pool.
func (c *Container) Close() {
	c.Pool.Close()
}
