package job

import "errors"

var (
	// ErrNotConfigured is returned when a job is enqueued while the
	// queue is disabled.
	ErrNotConfigured = errors.New("job: queue not configured")

	// ErrUnknownTask is returned for task names nothing was registered under.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrDuplicateTask is returned by NewManager when two tasks share a name.
	ErrDuplicateTask = errors.New("job: duplicate task name")

	// ErrInvalidPayload is returned when a stored payload no longer
	// decodes into the task's payload type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")

	// ErrPoolRequired is returned by NewManager and NewEnqueuer without a pool.
	ErrPoolRequired = errors.New("job: pool is required")

	ErrHealthcheckFailed = errors.New("job: healthcheck failed")

	// ErrInvalidSchedule is returned for cron expressions that do not parse.
	ErrInvalidSchedule = errors.New("job: invalid cron schedule")
)
