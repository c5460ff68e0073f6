package job

import (
	"context"

	"github.com/riverqueue/river"
)

// Attempt identifies the run of a job a task handler is executing in.
type Attempt struct {
	JobID int64
	// Number starts at 1.
	Number int
	Max    int
}

// Final reports whether a failure of this attempt will not be retried.
func (a Attempt) Final() bool {
	return a.Max > 0 && a.Number >= a.Max
}

type attemptKey struct{}

func withAttempt(ctx context.Context, a Attempt) context.Context {
	return context.WithValue(ctx, attemptKey{}, a)
}

// AttemptFromContext returns the attempt stored by the worker. The second
// result is false when the handler runs outside a job.
func AttemptFromContext(ctx context.Context) (Attempt, bool) {
	a, ok := ctx.Value(attemptKey{}).(Attempt)
	return a, ok
}

// Cancel wraps err so the job is not retried. Use it for failures that
// no later attempt can fix, such as a rejected payload.
func Cancel(err error) error {
	return river.JobCancel(err)
}
