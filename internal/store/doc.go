// Package store persists the delivery log: one row per email handed to
// the mailer, moving from queued to sent or failed.
//
// Queries run over [DBTX], so the same repository works on the pool or
// inside a transaction that also inserts the River job:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//	    if err := deliveries.WithTx(tx).Create(ctx, d); err != nil {
//	        return err
//	    }
//	    return jobs.EnqueueTx(ctx, tx, "send_email", payload)
//	})
//
// The schema ships as embedded goose migrations, see [Migrations].
package store
