package delivery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailroom/internal/store"
	"github.com/dmitrymomot/mailroom/pkg/job"
	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Mailer composes and sends emails.
type Mailer interface {
	Compose(ctx context.Context, p mailer.SendParams) (*mailer.Email, error)
	SendRaw(ctx context.Context, email *mailer.Email) error
}

// Log records delivery state. *store.Deliveries implements it.
type Log interface {
	Create(ctx context.Context, d *store.Delivery) error
	Get(ctx context.Context, id uuid.UUID) (*store.Delivery, error)
	MarkSent(ctx context.Context, id uuid.UUID, recipient, subject string) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause error, final bool) error
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Queue inserts jobs. *job.Enqueuer and *job.Manager implement it.
type Queue interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// Job is the payload of the send task. The email is composed when the
// request is accepted, so a template edit never changes a queued email.
type Job struct {
	DeliveryID uuid.UUID     `json:"delivery_id"`
	Kind       string        `json:"kind"`
	Email      *mailer.Email `json:"email"`
}

// Receipt describes an accepted send.
type Receipt struct {
	ID      uuid.UUID    `json:"delivery_id"`
	Status  store.Status `json:"status"`
	Queued  bool         `json:"queued"`
	To      string       `json:"to"`
	Subject string       `json:"subject"`
}

// Service accepts sends, queues or performs them and keeps the log.
type Service struct {
	mailer Mailer
	log    Log
	queue  Queue
	outbox Outbox
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLog enables the delivery log.
func WithLog(l Log) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithQueue makes Submit enqueue instead of sending inline.
func WithQueue(q Queue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

// WithOutbox makes Submit write the delivery and its job atomically.
// It takes precedence over WithQueue for Submit.
func WithOutbox(o Outbox) Option {
	return func(s *Service) {
		s.outbox = o
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a delivery service on top of m.
func NewService(m Mailer, opts ...Option) *Service {
	s := &Service{
		mailer: m,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Async reports whether Submit enqueues.
func (s *Service) Async() bool {
	return s.queue != nil || s.outbox != nil
}

// Submit composes p and either enqueues it or sends it right away.
// Render and validation errors are returned before anything is logged
// or queued.
func (s *Service) Submit(ctx context.Context, p mailer.SendParams) (*Receipt, error) {
	email, err := s.mailer.Compose(ctx, p)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDeliveryID(logger.WithKind(ctx, p.Kind), id.String())

	rec := &Receipt{
		ID:      id,
		Status:  store.StatusQueued,
		To:      email.To[0],
		Subject: email.Subject,
	}
	d := &store.Delivery{
		ID:        id,
		Kind:      p.Kind,
		Recipient: rec.To,
		Subject:   rec.Subject,
		Status:    store.StatusQueued,
	}
	payload := Job{DeliveryID: id, Kind: p.Kind, Email: email}

	switch {
	case s.outbox != nil:
		if err := s.outbox.Put(ctx, d, payload, job.Tags(p.Kind)); err != nil {
			return nil, err
		}

	case s.queue != nil:
		if err := s.record(ctx, d); err != nil {
			return nil, err
		}
		if err := s.queue.Enqueue(ctx, TaskSendEmail, payload, job.Tags(p.Kind)); err != nil {
			s.markFailed(ctx, id, err, true)
			return nil, errors.Join(ErrEnqueueFailed, err)
		}

	default:
		if err := s.record(ctx, d); err != nil {
			return nil, err
		}
		if err := s.send(ctx, id, email, true); err != nil {
			return nil, err
		}
		rec.Status = store.StatusSent
		return rec, nil
	}

	rec.Queued = true
	s.logger.InfoContext(ctx, "email queued", slog.String("to", rec.To))
	return rec, nil
}

// Deliver sends a queued job. Failures are logged against the delivery;
// only the last attempt marks it failed. Invalid payloads are not retried.
func (s *Service) Deliver(ctx context.Context, j Job) error {
	ctx = logger.WithDeliveryID(logger.WithKind(ctx, j.Kind), j.DeliveryID.String())

	if err := j.Email.Validate(); err != nil {
		s.markFailed(ctx, j.DeliveryID, err, true)
		return job.Cancel(err)
	}

	final := true
	if attempt, ok := job.AttemptFromContext(ctx); ok {
		final = attempt.Final()
	}
	return s.send(ctx, j.DeliveryID, j.Email, final)
}

func (s *Service) send(ctx context.Context, id uuid.UUID, email *mailer.Email, final bool) error {
	if err := s.mailer.SendRaw(ctx, email); err != nil {
		s.markFailed(ctx, id, err, final)
		return err
	}

	if s.log != nil {
		if err := s.log.MarkSent(ctx, id, email.To[0], email.Subject); err != nil {
			// The email is out; a retry would send it twice.
			s.logger.ErrorContext(ctx, "mark delivery sent", slog.Any("error", err))
		}
	}
	return nil
}

// Get returns the logged state of a delivery.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*store.Delivery, error) {
	if s.log == nil {
		return nil, ErrNotFound
	}
	d, err := s.log.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Join(ErrNotFound, err)
	}
	return d, err
}

// Prune removes finished deliveries older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if s.log == nil {
		return 0, nil
	}
	n, err := s.log.Prune(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "deliveries pruned", slog.Int64("deleted", n))
	return n, nil
}

func (s *Service) record(ctx context.Context, d *store.Delivery) error {
	if s.log == nil {
		return nil
	}
	if err := s.log.Create(ctx, d); err != nil {
		return errors.Join(ErrLogFailed, err)
	}
	return nil
}

func (s *Service) markFailed(ctx context.Context, id uuid.UUID, cause error, final bool) {
	if s.log == nil {
		return
	}
	if err := s.log.MarkFailed(ctx, id, cause, final); err != nil {
		s.logger.ErrorContext(ctx, "mark delivery failed", slog.Any("error", err))
	}
}
