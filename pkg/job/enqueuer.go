package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

// Enqueuer inserts jobs without processing them. The HTTP server uses it
// to hand deliveries to separate worker processes.
type Enqueuer struct {
	client      *river.Client[pgx.Tx]
	logger      *slog.Logger
	queue       string
	maxAttempts int
}

// EnqueuerOption configures the enqueuer.
type EnqueuerOption func(*config)

// WithEnqueuerLogger sets the logger for the enqueuer.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return EnqueuerOption(WithLogger(l))
}

// WithEnqueuerConfig sets the default queue and attempt limit.
func WithEnqueuerConfig(cfg Config) EnqueuerOption {
	return EnqueuerOption(WithConfig(cfg))
}

// NewEnqueuer creates an insert-only client.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return newEnqueuer(client, cfg), nil
}

func newEnqueuer(client *river.Client[pgx.Tx], cfg *config) *Enqueuer {
	return &Enqueuer{
		client:      client,
		logger:      cfg.logger,
		queue:       cfg.queue,
		maxAttempts: cfg.maxAttempts,
	}
}

// Enqueue inserts a job for the named task. Task names are validated on
// the worker side.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := e.buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	res, err := e.client.Insert(ctx, args, insertOpts)
	if err != nil {
		return fmt.Errorf("job: enqueue: %w", err)
	}
	e.logInserted(ctx, name, res)
	return nil
}

// EnqueueTx inserts a job within tx. The job only becomes visible to
// workers once tx commits.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := e.buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	res, err := e.client.InsertTx(ctx, tx, args, insertOpts)
	if err != nil {
		return fmt.Errorf("job: enqueue tx: %w", err)
	}
	e.logInserted(ctx, name, res)
	return nil
}

func (e *Enqueuer) logInserted(ctx context.Context, name string, res *rivertype.JobInsertResult) {
	if res == nil || res.Job == nil {
		return
	}
	e.logger.DebugContext(ctx, "job enqueued",
		slog.String("task", name),
		slog.Int64("job_id", res.Job.ID),
		slog.String("queue", res.Job.Queue),
		slog.Bool("unique_skipped", res.UniqueSkippedAsDuplicate),
	)
}

// buildJobArgs creates River job arguments from the task name, payload
// and options, falling back to the enqueuer's queue and attempt limit.
func (e *Enqueuer) buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}

	args := &taskArgs{
		TaskName: name,
		Payload:  raw,
	}

	enq := &enqueueConfig{}
	for _, opt := range opts {
		opt(enq)
	}

	insertOpts := &river.InsertOpts{
		Queue:       e.queue,
		MaxAttempts: e.maxAttempts,
	}
	if enq.queue != "" {
		insertOpts.Queue = enq.queue
	}
	if enq.scheduledAt != nil {
		insertOpts.ScheduledAt = *enq.scheduledAt
	}
	if enq.maxAttempts > 0 {
		insertOpts.MaxAttempts = enq.maxAttempts
	}
	if enq.priority > 0 {
		insertOpts.Priority = enq.priority
	}
	if len(enq.tags) > 0 {
		insertOpts.Tags = enq.tags
	}
	if enq.uniqueFor > 0 {
		insertOpts.UniqueOpts = river.UniqueOpts{
			ByArgs:   enq.uniqueKey != "",
			ByPeriod: enq.uniqueFor,
		}
		args.UniqueKey = enq.uniqueKey
	}

	return args, insertOpts, nil
}
