package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

func TestNewManager_NilPool(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)

	_, err = NewEnqueuer(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)
}

func TestTaskArgs_Kind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mailroom:task", taskArgs{TaskName: "send_email"}.Kind())
}

func TestConfig_RiverQueues(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	WithConfig(Config{Queue: "email", MaxWorkers: 7})(cfg)
	WithQueue("bulk", 2)(cfg)

	queues := cfg.riverQueues()
	assert.Len(t, queues, 3)
	assert.Equal(t, 7, queues[river.QueueDefault].MaxWorkers)
	assert.Equal(t, 7, queues["email"].MaxWorkers)
	assert.Equal(t, 2, queues["bulk"].MaxWorkers)
}

func TestEnqueuer_buildJobArgs(t *testing.T) {
	t.Parallel()

	e := &Enqueuer{queue: "email", maxAttempts: 5}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		args, opts, err := e.buildJobArgs("send_email", nil)
		require.NoError(t, err)
		assert.Equal(t, "send_email", args.TaskName)
		assert.Empty(t, args.Payload)
		assert.Equal(t, "email", opts.Queue)
		assert.Equal(t, 5, opts.MaxAttempts)
		assert.False(t, opts.UniqueOpts.ByArgs)
	})

	t.Run("payload", func(t *testing.T) {
		t.Parallel()

		payload := testPayload{DeliveryID: "d-1", Kind: "welcome"}
		args, _, err := e.buildJobArgs("send_email", payload)
		require.NoError(t, err)

		var decoded testPayload
		require.NoError(t, json.Unmarshal(args.Payload, &decoded))
		assert.Equal(t, payload, decoded)
	})

	t.Run("unencodable payload", func(t *testing.T) {
		t.Parallel()

		_, _, err := e.buildJobArgs("send_email", map[string]any{"ch": make(chan int)})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		at := time.Now().Add(time.Hour)
		args, opts, err := e.buildJobArgs("send_email", nil,
			InQueue("bulk"),
			ScheduledAt(at),
			MaxAttempts(2),
			Priority(3),
			Tags("welcome"),
			UniqueFor(time.Minute),
			UniqueKey("welcome:42"),
		)
		require.NoError(t, err)
		assert.Equal(t, "welcome:42", args.UniqueKey)
		assert.Equal(t, "bulk", opts.Queue)
		assert.Equal(t, at, opts.ScheduledAt)
		assert.Equal(t, 2, opts.MaxAttempts)
		assert.Equal(t, 3, opts.Priority)
		assert.Equal(t, []string{"welcome"}, opts.Tags)
		assert.Equal(t, time.Minute, opts.UniqueOpts.ByPeriod)
		assert.True(t, opts.UniqueOpts.ByArgs)
	})
}

type attemptRecorder struct {
	err     error
	attempt Attempt
	seen    bool
}

func (r *attemptRecorder) Execute(ctx context.Context, _ json.RawMessage) error {
	r.attempt, r.seen = AttemptFromContext(ctx)
	return r.err
}

func TestTaskWorker_Work(t *testing.T) {
	t.Parallel()

	newJob := func(name string, attempt, max int) *river.Job[taskArgs] {
		return &river.Job[taskArgs]{
			JobRow: &rivertype.JobRow{ID: 42, Attempt: attempt, MaxAttempts: max},
			Args:   taskArgs{TaskName: name},
		}
	}

	t.Run("passes attempt to handler", func(t *testing.T) {
		t.Parallel()

		rec := &attemptRecorder{}
		registry := newTaskRegistry()
		registry.register("send_email", rec)
		w := &taskWorker{registry: registry, logger: logger.NewNope()}

		require.NoError(t, w.Work(context.Background(), newJob("send_email", 2, 5)))
		require.True(t, rec.seen)
		assert.Equal(t, Attempt{JobID: 42, Number: 2, Max: 5}, rec.attempt)
	})

	t.Run("returns handler error", func(t *testing.T) {
		t.Parallel()

		rec := &attemptRecorder{err: errors.New("smtp timeout")}
		registry := newTaskRegistry()
		registry.register("send_email", rec)
		w := &taskWorker{registry: registry, logger: logger.NewNope()}

		err := w.Work(context.Background(), newJob("send_email", 5, 5))
		assert.EqualError(t, err, "smtp timeout")
		assert.True(t, rec.attempt.Final())
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		w := &taskWorker{registry: newTaskRegistry(), logger: logger.NewNope()}
		err := w.Work(context.Background(), newJob("missing", 1, 5))
		assert.ErrorIs(t, err, ErrUnknownTask)
	})
}

func TestAttempt_Final(t *testing.T) {
	t.Parallel()

	assert.False(t, Attempt{Number: 1, Max: 3}.Final())
	assert.True(t, Attempt{Number: 3, Max: 3}.Final())
	assert.False(t, Attempt{Number: 3}.Final())

	_, ok := AttemptFromContext(context.Background())
	assert.False(t, ok)
}
