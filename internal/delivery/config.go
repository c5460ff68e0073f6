package delivery

import "time"

// Config holds delivery settings.
type Config struct {
	// Async hands sends to the job queue. When false, or when no queue is
	// available, sends happen inside the request.
	Async bool `env:"DELIVERY_ASYNC" envDefault:"true"`
	// Retention is how long finished deliveries are kept.
	Retention     time.Duration `env:"DELIVERY_RETENTION" envDefault:"720h"`
	PruneSchedule string        `env:"DELIVERY_PRUNE_SCHEDULE" envDefault:"0 3 * * *"`
	// WarmSchedule refreshes the template cache; it also runs on worker start.
	WarmSchedule string `env:"TEMPLATES_WARM_SCHEDULE" envDefault:"*/30 * * * *"`
}
