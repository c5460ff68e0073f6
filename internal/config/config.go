package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/mailroom/internal/delivery"
	"github.com/dmitrymomot/mailroom/internal/httpapi"
	"github.com/dmitrymomot/mailroom/pkg/db"
	"github.com/dmitrymomot/mailroom/pkg/job"
	"github.com/dmitrymomot/mailroom/pkg/kinds"
	"github.com/dmitrymomot/mailroom/pkg/loader"
	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/mailer/filesender"
	"github.com/dmitrymomot/mailroom/pkg/mailer/postmark"
	"github.com/dmitrymomot/mailroom/pkg/mailer/resend"
	"github.com/dmitrymomot/mailroom/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailroom/pkg/redis"
	"github.com/dmitrymomot/mailroom/pkg/storage"
)

// Sender providers selectable through MAILER_PROVIDER.
const (
	ProviderFile     = "file"
	ProviderResend   = "resend"
	ProviderPostmark = "postmark"
	ProviderSMTP     = "smtp"
)

var providers = []string{ProviderFile, ProviderResend, ProviderPostmark, ProviderSMTP}

// Config is the process configuration assembled from the package configs.
type Config struct {
	Provider string `env:"MAILER_PROVIDER" envDefault:"file"`

	Log      logger.Config
	Mailer   mailer.Config
	Kinds    kinds.Config
	Loader   loader.Config
	Storage  storage.Config
	Redis    redis.Config
	Database db.Config
	Jobs     job.Config
	Delivery delivery.Config
	HTTP     httpapi.Config

	Resend   resend.Config
	Postmark postmark.Config
	SMTP     smtp.Config
	File     filesender.Config
}

// Load reads the given dotenv files (".env" when none are named) into the
// process environment and parses it. Missing files are skipped. Variables
// already set in the environment win over the files.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrDotenv, fmt.Errorf("%s: %w", name, err))
		}
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints the env tags cannot express.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownProvider, c.Provider, strings.Join(providers, ", "))
	}

	switch c.Loader.CacheBackend {
	case loader.CacheMemory, loader.CacheNone, "":
	case loader.CacheRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%w: TEMPLATES_CACHE=redis requires REDIS_URL", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown template cache %q", ErrInvalid, c.Loader.CacheBackend)
	}

	if c.Delivery.Async && !c.Database.Enabled() {
		// Without a database there is no queue; sends happen inline.
		c.Delivery.Async = false
	}
	return nil
}
