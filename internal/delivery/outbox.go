package delivery

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mailroom/internal/store"
	"github.com/dmitrymomot/mailroom/pkg/db"
	"github.com/dmitrymomot/mailroom/pkg/job"
)

// Outbox stores a delivery together with its send job. Either both are
// written or neither is.
type Outbox interface {
	Put(ctx context.Context, d *store.Delivery, payload Job, opts ...job.EnqueueOption) error
}

// TxEnqueuer inserts jobs inside a caller's transaction.
// *job.Enqueuer and *job.Manager implement it.
type TxEnqueuer interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

// PgOutbox is the Postgres Outbox. The delivery row and the River job
// share one transaction.
type PgOutbox struct {
	pool       *pgxpool.Pool
	deliveries *store.Deliveries
	jobs       TxEnqueuer
}

var _ Outbox = (*PgOutbox)(nil)

func NewPgOutbox(pool *pgxpool.Pool, deliveries *store.Deliveries, jobs TxEnqueuer) *PgOutbox {
	return &PgOutbox{pool: pool, deliveries: deliveries, jobs: jobs}
}

func (o *PgOutbox) Put(ctx context.Context, d *store.Delivery, payload Job, opts ...job.EnqueueOption) error {
	return db.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		if err := o.deliveries.WithTx(tx).Create(ctx, d); err != nil {
			return errors.Join(ErrLogFailed, err)
		}
		if err := o.jobs.EnqueueTx(ctx, tx, TaskSendEmail, payload, opts...); err != nil {
			return errors.Join(ErrEnqueueFailed, err)
		}
		return nil
	})
}
