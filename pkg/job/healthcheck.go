package job

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	errManagerNil        = errors.New("manager is nil")
	errManagerNotStarted = errors.New("manager not started")
)

// Healthcheck reports whether the manager is working its delivery queue.
// It fails when the manager is stopped, when River cannot read the queue
// row, or when the queue has been paused.
//
//	health.Checks{"jobs": job.Healthcheck(manager)}
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if m == nil {
			return errors.Join(ErrHealthcheckFailed, errManagerNil)
		}

		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if !started {
			return errors.Join(ErrHealthcheckFailed, errManagerNotStarted)
		}

		q, err := m.client.QueueGet(ctx, m.queue)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("queue %q: %w", m.queue, err))
		}
		if q.PausedAt != nil {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("queue %q paused since %s", m.queue, q.PausedAt.Format(time.RFC3339)))
		}
		return nil
	}
}
