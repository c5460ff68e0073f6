package job

import (
	"slices"
	"time"
)

// enqueueConfig holds per-job insert options.
type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption configures a single enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue overrides the enqueuer's default queue. Empty names are ignored.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// ScheduledIn delays the job by d from now.
//
//	svc.Enqueue(ctx, "send_email", p, job.ScheduledIn(10*time.Minute))
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts overrides the attempt limit. Non-positive values are ignored.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor drops duplicate inserts within d. Combined with UniqueKey,
// only jobs sharing the key are considered duplicates.
//
//	// one receipt per order per hour
//	job.UniqueFor(time.Hour), job.UniqueKey("receipt:"+orderID)
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

// UniqueKey scopes UniqueFor to jobs with the same key.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}

// River accepts priorities from 1 (worked first) to 4.
const (
	highestPriority = 1
	lowestPriority  = 4
)

// Priority sets the River priority, clamped to 1..4. Zero keeps the default.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		if p != 0 {
			c.priority = min(max(p, highestPriority), lowestPriority)
		}
	}
}

// Tags attaches River job tags, e.g. the email kind. Empty and repeated
// tags are dropped.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		for _, tag := range tags {
			if tag != "" && !slices.Contains(c.tags, tag) {
				c.tags = append(c.tags, tag)
			}
		}
	}
}
