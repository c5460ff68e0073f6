package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
)

// scheduledHandler wraps a scheduled task's Handle method.
type scheduledHandler func(ctx context.Context) error

type scheduleConfig struct {
	handler    scheduledHandler
	name       string
	schedule   string
	runOnStart bool
}

// periodicJob turns the schedule into a River periodic job inserting
// the task by name with an empty payload.
func (s scheduleConfig) periodicJob(queue string) (*river.PeriodicJob, error) {
	schedule, err := parseCronSchedule(s.schedule)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, s.schedule, err)
	}

	name := s.name
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) {
			return &taskArgs{TaskName: name}, &river.InsertOpts{Queue: queue}
		},
		&river.PeriodicJobOpts{RunOnStart: s.runOnStart},
	), nil
}

type scheduledTaskExecutor struct {
	handler scheduledHandler
}

func (e *scheduledTaskExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
