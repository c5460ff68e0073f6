package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailroom/internal/config"
	"github.com/dmitrymomot/mailroom/internal/delivery"
	"github.com/dmitrymomot/mailroom/internal/store"
	"github.com/dmitrymomot/mailroom/pkg/db"
	"github.com/dmitrymomot/mailroom/pkg/health"
	"github.com/dmitrymomot/mailroom/pkg/job"
	"github.com/dmitrymomot/mailroom/pkg/kinds"
	"github.com/dmitrymomot/mailroom/pkg/loader"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/redis"
	"github.com/dmitrymomot/mailroom/pkg/storage"
	"github.com/dmitrymomot/mailroom/templates"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	pool    *pgxpool.Pool
	redis   goredis.UniversalClient
	kinds   *kinds.Registry
	loader  *loader.Loader
	mailer  *mailer.Mailer
	service *delivery.Service
	checks  health.Checks
	closers []func(context.Context) error
}

type appOptions struct {
	// sender builds the configured mailer.Sender. Render-only apps skip it.
	sender bool
	// database connects and migrates Postgres when it is configured.
	database bool
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, opts appOptions) (_ *app, err error) {
	a := &app{cfg: cfg, log: log, checks: health.Checks{}}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
		}
	}()

	if a.kinds, err = kinds.Load(cfg.Kinds); err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled() {
		if a.redis, err = redis.Open(ctx, cfg.Redis, redis.WithLogger(log)); err != nil {
			return nil, err
		}
		a.checks["redis"] = redis.Healthcheck(a.redis)
		a.closers = append(a.closers, func(context.Context) error { return a.redis.Close() })
	}

	if a.loader, err = a.newLoader(); err != nil {
		return nil, err
	}

	var sender mailer.Sender
	if opts.sender {
		if sender, err = cfg.NewSender(); err != nil {
			return nil, err
		}
	}
	a.mailer = mailer.New(sender, a.kinds, a.loader, cfg.Mailer, mailer.WithLogger(log))

	svcOpts := []delivery.Option{delivery.WithLogger(log)}
	if opts.database && cfg.Database.Enabled() {
		if err := a.connectDatabase(ctx); err != nil {
			return nil, err
		}
		deliveries := store.NewDeliveries(a.pool)
		svcOpts = append(svcOpts, delivery.WithLog(deliveries))

		if cfg.Delivery.Async {
			enq, err := job.NewEnqueuer(a.pool, job.WithEnqueuerConfig(cfg.Jobs), job.WithEnqueuerLogger(log))
			if err != nil {
				return nil, err
			}
			svcOpts = append(svcOpts, delivery.WithOutbox(delivery.NewPgOutbox(a.pool, deliveries, enq)))
		}
	}
	a.service = delivery.NewService(a.mailer, svcOpts...)

	return a, nil
}

// newLoader searches TEMPLATES_DIR, then the S3 bucket, then the embedded
// templates.
func (a *app) newLoader() (*loader.Loader, error) {
	cfg := a.cfg.Loader
	opts := []loader.Option{loader.WithLogger(a.log)}

	if cfg.Dir != "" {
		opts = append(opts, loader.WithSource(loader.NewFSSource("dir", os.DirFS(cfg.Dir))))
	}
	if a.cfg.Storage.Enabled() {
		bucket, err := storage.New(a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		opts = append(opts, loader.WithSource(loader.NewStorageSource("s3", bucket)))
		a.checks["storage"] = bucket.Healthcheck()
	}
	opts = append(opts, loader.WithSource(loader.NewFSSource("embedded", templates.FS())))

	if len(cfg.Candidates) > 0 {
		opts = append(opts, loader.WithCandidates(cfg.Candidates...))
	}

	switch cfg.CacheBackend {
	case loader.CacheRedis:
		if a.redis == nil {
			return nil, fmt.Errorf("%w: redis cache without a redis connection", config.ErrInvalid)
		}
		opts = append(opts, loader.WithCache(loader.NewRedisCache(a.redis, cfg.CachePrefix), cfg.CacheTTL))
	case loader.CacheNone:
	default:
		opts = append(opts, loader.WithCache(loader.NewMemoryCache(cfg.CacheSize), cfg.CacheTTL))
	}

	return loader.New(opts...), nil
}

func (a *app) connectDatabase(ctx context.Context) error {
	pool, err := db.Connect(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	a.pool = pool
	a.closers = append(a.closers, db.Shutdown(pool))
	a.checks["db"] = db.Healthcheck(pool)

	if err := db.Migrate(ctx, pool, store.Migrations(), a.cfg.Database.MigrationsTable, a.log); err != nil {
		return err
	}
	return db.MigrateQueue(ctx, pool, a.log)
}

// newWorker builds the job manager working deliveries and the periodic
// maintenance tasks.
func (a *app) newWorker() (*job.Manager, error) {
	if a.pool == nil {
		return nil, errors.New("worker requires DATABASE_URL")
	}

	warm := a.kinds.Templates()
	if layout := a.cfg.Mailer.Layout; layout != "" && layout != mailer.LayoutNone {
		warm = append(warm, layout)
	}
	m, err := job.NewManager(a.pool,
		job.WithConfig(a.cfg.Jobs),
		job.WithLogger(a.log),
		job.WithTask(delivery.NewSendEmailTask(a.service)),
		job.WithScheduledTask(delivery.NewPruneTask(a.service, a.cfg.Delivery)),
		job.WithScheduledTask(delivery.NewWarmTemplatesTask(a.loader, warm, a.cfg.Delivery, a.log)),
	)
	if err != nil {
		return nil, err
	}
	a.checks["jobs"] = job.Healthcheck(m)
	return m, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
