// Package job runs background work on River, a Postgres-native queue.
//
// Every task is stored under the single River kind [TaskKind]; the task
// name recorded in the job selects the registered handler, which decodes
// its own JSON payload. Handlers are plain structs with Name and Handle
// methods, registered without importing an interface:
//
//	type SendEmail struct{ svc *delivery.Service }
//
//	func (t *SendEmail) Name() string { return "send_email" }
//
//	func (t *SendEmail) Handle(ctx context.Context, p delivery.Job) error {
//	    return t.svc.Deliver(ctx, p)
//	}
//
// Periodic tasks add a cron Schedule and take no payload. A task that
// also implements RunOnStart() bool can ask to run when the worker boots,
// which is how template caches are warmed.
//
// # Processes
//
// The worker process builds a [Manager]; the HTTP server only inserts jobs
// through an [Enqueuer]. Both insert into the queue named by Config.Queue
// with Config.MaxAttempts unless an [EnqueueOption] says otherwise.
//
//	m, err := job.NewManager(pool,
//	    job.WithConfig(cfg.Jobs),
//	    job.WithTask(&SendEmail{svc: svc}),
//	    job.WithScheduledTask(&PruneDeliveries{repo: repo}),
//	    job.WithLogger(log),
//	)
//	if err := m.Start(ctx); err != nil { ... }
//	defer m.Stop(context.Background())
//
// Handlers can inspect the current attempt with [AttemptFromContext] to
// tell a retryable failure from the final one.
//
// # Health
//
// [Healthcheck] adapts a Manager to health.CheckFunc.
//
// # Migrations
//
// River's tables are created by db.Migrate through rivermigrate before
// any client is built.
package job
