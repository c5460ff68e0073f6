package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

// TaskKind is the River job kind every mailroom task is stored under.
const TaskKind = "mailroom:task"

// Manager runs River workers for the registered tasks. It embeds
// Enqueuer, so jobs can be inserted before Start is called.
type Manager struct {
	*Enqueuer
	registry *taskRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager creates a job manager. The River client is created
// immediately; call Start to begin working jobs.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
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

	periodicJobs := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, sched := range cfg.schedules {
		pj, err := sched.periodicJob(cfg.queue)
		if err != nil {
			return nil, err
		}
		periodicJobs = append(periodicJobs, pj)
		cfg.registry.register(sched.name, &scheduledTaskExecutor{handler: sched.handler})
	}
	if err := cfg.registry.validate(); err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{
		registry: cfg.registry,
		logger:   cfg.logger,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       cfg.riverQueues(),
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		JobTimeout:   cfg.timeout,
		MaxAttempts:  cfg.maxAttempts,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: newEnqueuer(client, cfg),
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// riverQueues always serves the default queue and the configured
// delivery queue, plus any extra named queues.
func (c *config) riverQueues() map[string]river.QueueConfig {
	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: c.maxWorkers},
	}
	if c.queue != "" {
		queues[c.queue] = river.QueueConfig{MaxWorkers: c.maxWorkers}
	}
	for name, n := range c.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}
	return queues
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.InfoContext(ctx, "job manager started",
		slog.Any("tasks", m.registry.names()),
		slog.String("queue", m.queue),
	)
	return nil
}

// Stop waits for running jobs to finish and stops the client.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx inserts a job for a registered task within tx.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// taskArgs is the single River args type; the task name selects the
// handler and the payload is decoded by it.
type taskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string {
	return TaskKind
}

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *taskRegistry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok || executor == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName)
	}

	attempt := Attempt{JobID: job.ID, Number: job.Attempt, Max: job.MaxAttempts}
	return w.execute(withAttempt(ctx, attempt), job.Args, executor)
}

func (w *taskWorker) execute(ctx context.Context, args taskArgs, executor taskExecutor) error {
	attempt, _ := AttemptFromContext(ctx)
	log := w.logger.With(
		slog.String("task", args.TaskName),
		slog.Int64("job_id", attempt.JobID),
		slog.Int("attempt", attempt.Number),
	)

	log.DebugContext(ctx, "executing task")
	if err := executor.Execute(ctx, args.Payload); err != nil {
		level := slog.LevelWarn
		if attempt.Final() {
			level = slog.LevelError
		}
		log.Log(ctx, level, "task failed",
			slog.Bool("final", attempt.Final()),
			slog.Any("error", err),
		)
		return err
	}
	log.DebugContext(ctx, "task completed")
	return nil
}

// Shutdown returns a shutdown function for the job manager.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}

// StartFunc returns a startup function for the job manager.
func (m *Manager) StartFunc() func(context.Context) error {
	return m.Start
}
