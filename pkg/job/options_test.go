package job

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionsTestTask struct{}

func (t *optionsTestTask) Name() string { return "options_test" }

func (t *optionsTestTask) Handle(ctx context.Context, p struct{}) error {
	return nil
}

type scheduledTestTask struct {
	schedule string
	onStart  bool
}

func (t *scheduledTestTask) Name() string     { return "scheduled_test" }
func (t *scheduledTestTask) Schedule() string { return t.schedule }

func (t *scheduledTestTask) Handle(ctx context.Context) error {
	return nil
}

type warmupTestTask struct{ scheduledTestTask }

func (t *warmupTestTask) RunOnStart() bool { return t.onStart }

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	assert.NotNil(t, cfg.registry)
	assert.NotNil(t, cfg.queues)
	assert.Empty(t, cfg.schedules)
	assert.Nil(t, cfg.logger)
	assert.Equal(t, defaultMaxWorkers, cfg.maxWorkers)
	assert.Equal(t, defaultMaxAttempts, cfg.maxAttempts)
	assert.Equal(t, defaultTimeout, cfg.timeout)
}

func TestWithTask(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	WithTask[struct{}, *optionsTestTask](&optionsTestTask{})(cfg)

	executor, ok := cfg.registry.get("options_test")
	assert.True(t, ok)
	assert.NotNil(t, executor)
}

func TestWithScheduledTask(t *testing.T) {
	t.Parallel()

	t.Run("plain", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithScheduledTask(&scheduledTestTask{schedule: "0 * * * *"})(cfg)

		require.Len(t, cfg.schedules, 1)
		assert.Equal(t, "scheduled_test", cfg.schedules[0].name)
		assert.Equal(t, "0 * * * *", cfg.schedules[0].schedule)
		assert.NotNil(t, cfg.schedules[0].handler)
		assert.False(t, cfg.schedules[0].runOnStart)
	})

	t.Run("run on start", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		task := &warmupTestTask{scheduledTestTask{schedule: "*/15 * * * *", onStart: true}}
		WithScheduledTask(task)(cfg)

		require.Len(t, cfg.schedules, 1)
		assert.True(t, cfg.schedules[0].runOnStart)
	})
}

func TestWithQueue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		queue   string
		workers int
		want    bool
	}{
		{name: "valid", queue: "bulk", workers: 10, want: true},
		{name: "zero workers", queue: "bulk", workers: 0},
		{name: "negative workers", queue: "bulk", workers: -5},
		{name: "empty name", queue: "", workers: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newConfig()
			WithQueue(tt.queue, tt.workers)(cfg)

			n, ok := cfg.queues[tt.queue]
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.workers, n)
			}
		})
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	l := slog.New(slog.DiscardHandler)
	WithLogger(l)(cfg)
	assert.Same(t, l, cfg.logger)

	WithLogger(nil)(cfg)
	assert.Same(t, l, cfg.logger)
}

func TestWithMaxWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -10} {
		cfg := newConfig()
		WithMaxWorkers(n)(cfg)
		assert.Equal(t, defaultMaxWorkers, cfg.maxWorkers)
	}

	cfg := newConfig()
	WithMaxWorkers(50)(cfg)
	assert.Equal(t, 50, cfg.maxWorkers)
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithConfig(Config{Queue: "email", MaxWorkers: 4, MaxAttempts: 8, Timeout: 5 * time.Second})(cfg)

		assert.Equal(t, "email", cfg.queue)
		assert.Equal(t, 4, cfg.maxWorkers)
		assert.Equal(t, 8, cfg.maxAttempts)
		assert.Equal(t, 5*time.Second, cfg.timeout)
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithConfig(Config{})(cfg)

		assert.Empty(t, cfg.queue)
		assert.Equal(t, defaultMaxWorkers, cfg.maxWorkers)
		assert.Equal(t, defaultMaxAttempts, cfg.maxAttempts)
		assert.Equal(t, defaultTimeout, cfg.timeout)
	})
}

func TestEnqueueOptions(t *testing.T) {
	t.Parallel()

	t.Run("in queue ignores empty", func(t *testing.T) {
		t.Parallel()

		cfg := &enqueueConfig{queue: "existing"}
		InQueue("")(cfg)
		assert.Equal(t, "existing", cfg.queue)
		InQueue("email")(cfg)
		assert.Equal(t, "email", cfg.queue)
	})

	t.Run("scheduled in", func(t *testing.T) {
		t.Parallel()

		cfg := &enqueueConfig{}
		before := time.Now()
		ScheduledIn(time.Hour)(cfg)

		require.NotNil(t, cfg.scheduledAt)
		assert.WithinDuration(t, before.Add(time.Hour), *cfg.scheduledAt, time.Second)
	})

	t.Run("max attempts ignores non-positive", func(t *testing.T) {
		t.Parallel()

		cfg := &enqueueConfig{}
		MaxAttempts(0)(cfg)
		MaxAttempts(-1)(cfg)
		assert.Zero(t, cfg.maxAttempts)
		MaxAttempts(3)(cfg)
		assert.Equal(t, 3, cfg.maxAttempts)
	})

	t.Run("tags append", func(t *testing.T) {
		t.Parallel()

		cfg := &enqueueConfig{}
		Tags("order-confirmation")(cfg)
		Tags("urgent", "", "order-confirmation", "retry")(cfg)
		assert.Equal(t, []string{"order-confirmation", "urgent", "retry"}, cfg.tags)
	})

	t.Run("priority clamps", func(t *testing.T) {
		t.Parallel()

		for in, want := range map[int]int{0: 0, -3: 1, 1: 1, 3: 3, 9: 4} {
			cfg := &enqueueConfig{}
			Priority(in)(cfg)
			assert.Equal(t, want, cfg.priority, "priority %d", in)
		}
	})
}
