// Package db opens the PostgreSQL pool shared by the delivery log and the
// River queue, and applies both sets of migrations.
//
// Settings come from the environment:
//
//	DATABASE_URL                 connection URL (required)
//	DATABASE_MIGRATIONS_TABLE    goose version table (default: mailroom_migrations)
//	DATABASE_MAX_OPEN_CONNS      pool size (default: 10)
//	DATABASE_MIN_CONNS           idle connections kept open (default: 2)
//	DATABASE_RETRY_ATTEMPTS      connect attempts (default: 3)
//	DATABASE_RETRY_INTERVAL      wait unit between attempts (default: 5s)
//
// Startup order:
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := db.MigrateQueue(ctx, pool, log); err != nil { ... }
//	if err := db.Migrate(ctx, pool, store.Migrations(), cfg.Database.MigrationsTable, log); err != nil { ... }
//
// [WithTx] commits when fn returns nil and rolls back otherwise, including
// on panic. [Healthcheck] adapts the pool to health.CheckFunc.
package db
