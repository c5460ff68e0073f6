package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

// Task names.
const (
	TaskSendEmail       = "send_email"
	TaskPruneDeliveries = "prune_deliveries"
	TaskWarmTemplates   = "warm_templates"
)

// SendEmailTask delivers queued emails.
type SendEmailTask struct {
	svc *Service
}

func NewSendEmailTask(svc *Service) *SendEmailTask {
	return &SendEmailTask{svc: svc}
}

func (t *SendEmailTask) Name() string { return TaskSendEmail }

func (t *SendEmailTask) Handle(ctx context.Context, j Job) error {
	return t.svc.Deliver(ctx, j)
}

// PruneTask deletes old finished deliveries on a schedule.
type PruneTask struct {
	svc       *Service
	schedule  string
	retention time.Duration
}

func NewPruneTask(svc *Service, cfg Config) *PruneTask {
	return &PruneTask{svc: svc, schedule: cfg.PruneSchedule, retention: cfg.Retention}
}

func (t *PruneTask) Name() string     { return TaskPruneDeliveries }
func (t *PruneTask) Schedule() string { return t.schedule }

func (t *PruneTask) Handle(ctx context.Context) error {
	_, err := t.svc.Prune(ctx, t.retention)
	return err
}

// Warmer preloads templates. *loader.Loader implements it.
type Warmer interface {
	Warm(ctx context.Context, names ...string) error
}

// WarmTemplatesTask reloads the templates of every kind into the cache,
// once at worker start and then on a schedule.
type WarmTemplatesTask struct {
	warmer   Warmer
	logger   *slog.Logger
	schedule string
	names    []string
}

func NewWarmTemplatesTask(w Warmer, names []string, cfg Config, l *slog.Logger) *WarmTemplatesTask {
	if l == nil {
		l = logger.NewNope()
	}
	return &WarmTemplatesTask{warmer: w, names: names, schedule: cfg.WarmSchedule, logger: l}
}

func (t *WarmTemplatesTask) Name() string     { return TaskWarmTemplates }
func (t *WarmTemplatesTask) Schedule() string { return t.schedule }
func (t *WarmTemplatesTask) RunOnStart() bool { return true }

func (t *WarmTemplatesTask) Handle(ctx context.Context) error {
	if err := t.warmer.Warm(ctx, t.names...); err != nil {
		return err
	}
	t.logger.DebugContext(ctx, "templates warmed", slog.Int("count", len(t.names)))
	return nil
}
