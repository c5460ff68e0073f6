package job

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultMaxWorkers  = 20
	defaultMaxAttempts = 5
	defaultTimeout     = time.Minute
)

// config holds job manager configuration.
type config struct {
	registry    *taskRegistry
	queues      map[string]int
	logger      *slog.Logger
	queue       string
	schedules   []scheduleConfig
	maxWorkers  int
	maxAttempts int
	timeout     time.Duration
}

func newConfig() *config {
	return &config{
		registry:    newTaskRegistry(),
		queues:      make(map[string]int),
		maxWorkers:  defaultMaxWorkers,
		maxAttempts: defaultMaxAttempts,
		timeout:     defaultTimeout,
	}
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task handler using structural typing.
// The payload type P is inferred from the Handle method signature.
//
// Example:
//
//	type SendEmail struct{ svc *delivery.Service }
//
//	func (t *SendEmail) Name() string { return "send_email" }
//	func (t *SendEmail) Handle(ctx context.Context, p SendEmailPayload) error {
//	    return t.svc.Deliver(ctx, p)
//	}
//
//	job.WithTask(&SendEmail{svc: svc})
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), newTaskWrapper[P, T](task))
	}
}

// WithScheduledTask registers a periodic task.
// Schedule() returns a five-field cron expression (min hour day month weekday).
// Tasks that also implement RunOnStart() bool are run once when the
// manager starts if it returns true.
//
// Example:
//
//	type PruneDeliveries struct{ repo *store.Deliveries }
//
//	func (t *PruneDeliveries) Name() string     { return "prune_deliveries" }
//	func (t *PruneDeliveries) Schedule() string { return "0 3 * * *" }
//	func (t *PruneDeliveries) Handle(ctx context.Context) error {
//	    _, err := t.repo.Prune(ctx, time.Now().AddDate(0, 0, -30))
//	    return err
//	}
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		sc := scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		}
		if r, ok := any(task).(interface{ RunOnStart() bool }); ok {
			sc.runOnStart = r.RunOnStart()
		}
		c.schedules = append(c.schedules, sc)
	}
}

// WithQueue configures an additional named queue with the given number
// of workers.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the number of workers on the default and email queues.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
