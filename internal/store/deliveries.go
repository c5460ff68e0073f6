package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Deliveries is the delivery log repository.
type Deliveries struct {
	db  DBTX
	now func() time.Time
}

// NewDeliveries creates a repository over db.
func NewDeliveries(db DBTX) *Deliveries {
	return &Deliveries{db: db, now: time.Now}
}

// WithTx returns a repository bound to tx.
func (r *Deliveries) WithTx(tx pgx.Tx) *Deliveries {
	return &Deliveries{db: tx, now: r.now}
}

const createDelivery = `
INSERT INTO deliveries (id, kind, recipient, subject, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING created_at, updated_at`

// Create inserts d. A nil ID is replaced by a fresh UUIDv7 and an empty
// status defaults to queued; both are written back into d.
func (r *Deliveries) Create(ctx context.Context, d *Delivery) error {
	if d.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("store: new id: %w", err)
		}
		d.ID = id
	}
	if d.Status == "" {
		d.Status = StatusQueued
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}

	err := r.db.QueryRow(ctx, createDelivery,
		d.ID, d.Kind, d.Recipient, d.Subject, d.Status, r.now().UTC(),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	return nil
}

const getDelivery = `
SELECT id, kind, recipient, subject, status, attempts, error, created_at, updated_at
FROM deliveries WHERE id = $1`

// Get returns the delivery with the given id or ErrNotFound.
func (r *Deliveries) Get(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	var d Delivery
	err := r.db.QueryRow(ctx, getDelivery, id).Scan(
		&d.ID, &d.Kind, &d.Recipient, &d.Subject, &d.Status,
		&d.Attempts, &d.Error, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	return &d, nil
}

const markSent = `
UPDATE deliveries
SET status = 'sent', recipient = $2, subject = $3, attempts = attempts + 1, error = '', updated_at = $4
WHERE id = $1`

// MarkSent records a successful send together with the final recipient
// and subject.
func (r *Deliveries) MarkSent(ctx context.Context, id uuid.UUID, recipient, subject string) error {
	return r.exec(ctx, id, markSent, id, recipient, subject, r.now().UTC())
}

const markAttemptFailed = `
UPDATE deliveries
SET status = $2, attempts = attempts + 1, error = $3, updated_at = $4
WHERE id = $1`

// MarkFailed records a failed attempt. With final unset the delivery
// stays queued for the next retry.
func (r *Deliveries) MarkFailed(ctx context.Context, id uuid.UUID, cause error, final bool) error {
	status := StatusQueued
	if final {
		status = StatusFailed
	}
	msg := ""
	if cause != nil {
		msg = truncateError(cause.Error())
	}
	return r.exec(ctx, id, markAttemptFailed, id, status, msg, r.now().UTC())
}

const pruneDeliveries = `
DELETE FROM deliveries WHERE status IN ('sent', 'failed') AND updated_at < $1`

// Prune deletes finished deliveries last updated before cutoff and
// returns how many rows were removed.
func (r *Deliveries) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, pruneDeliveries, cutoff.UTC())
	if err != nil {
		return 0, errors.Join(ErrQuery, err)
	}
	return tag.RowsAffected(), nil
}

func (r *Deliveries) exec(ctx context.Context, id uuid.UUID, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
