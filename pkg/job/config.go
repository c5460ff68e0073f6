package job

import "time"

// Config holds queue settings loaded from the environment.
type Config struct {
	// Queue is the queue email deliveries are inserted into.
	Queue       string        `env:"JOB_QUEUE" envDefault:"email"`
	MaxWorkers  int           `env:"JOB_MAX_WORKERS" envDefault:"20"`
	MaxAttempts int           `env:"JOB_MAX_ATTEMPTS" envDefault:"5"`
	Timeout     time.Duration `env:"JOB_TIMEOUT" envDefault:"1m"`
}

// WithConfig applies cfg on top of the defaults. Zero fields are ignored.
func WithConfig(cfg Config) Option {
	return func(c *config) {
		if cfg.Queue != "" {
			c.queue = cfg.Queue
		}
		if cfg.MaxWorkers > 0 {
			c.maxWorkers = cfg.MaxWorkers
		}
		if cfg.MaxAttempts > 0 {
			c.maxAttempts = cfg.MaxAttempts
		}
		if cfg.Timeout > 0 {
			c.timeout = cfg.Timeout
		}
	}
}
