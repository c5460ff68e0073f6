package loader

import "time"

// Cache backends selectable through Config.CacheBackend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds template loading configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Dir is an optional directory searched before the embedded templates.
	Dir string `env:"TEMPLATES_DIR"`
	// Candidates overrides DefaultCandidates.
	Candidates []string `env:"TEMPLATES_CANDIDATES" envSeparator:","`
	// CacheBackend is one of "memory", "redis" or "none".
	CacheBackend string `env:"TEMPLATES_CACHE" envDefault:"memory"`
	// CachePrefix namespaces Redis keys.
	CachePrefix string `env:"TEMPLATES_CACHE_PREFIX" envDefault:"mailroom:templates"`
	// CacheTTL bounds how long a loaded template is served from cache.
	CacheTTL time.Duration `env:"TEMPLATES_CACHE_TTL" envDefault:"10m"`
	// CacheSize caps the in-memory cache. Zero means unlimited.
	CacheSize int `env:"TEMPLATES_CACHE_SIZE" envDefault:"256"`
}
