package storage

import (
	"path"
	"strings"
	"time"
)

// Config holds S3-compatible bucket configuration for template storage.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"TEMPLATES_S3_BUCKET"`

	// Prefix is prepended to every object key, e.g. "emails".
	Prefix string `env:"TEMPLATES_S3_PREFIX"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `env:"TEMPLATES_S3_ACCESS_KEY"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `env:"TEMPLATES_S3_SECRET_KEY"`

	// Endpoint is a custom S3 endpoint URL (MinIO and other S3-compatible services).
	Endpoint string `env:"TEMPLATES_S3_ENDPOINT"`

	// Region is the AWS region.
	Region string `env:"TEMPLATES_S3_REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"TEMPLATES_S3_PATH_STYLE" envDefault:"false"`

	// MaxObjectSize caps the size of a template read from the bucket.
	MaxObjectSize int64 `env:"TEMPLATES_S3_MAX_OBJECT_SIZE" envDefault:"1048576"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Object describes a stored template object.
type Object struct {
	LastModified time.Time
	Key          string
	ContentType  string
	ETag         string
	Size         int64
}

// Default configuration values.
const (
	DefaultRegion        = "us-east-1"
	DefaultMaxObjectSize = 1 << 20 // 1MB
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxObjectSize <= 0 {
		c.MaxObjectSize = DefaultMaxObjectSize
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// objectKey joins the configured prefix with a template name.
func (c *Config) objectKey(name string) string {
	name = strings.TrimLeft(name, "/")
	if c.Prefix == "" {
		return name
	}
	return path.Join(c.Prefix, name)
}

// templateName strips the configured prefix from an object key.
func (c *Config) templateName(key string) string {
	if c.Prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, c.Prefix+"/")
}

// contentTypeFor returns the MIME type stored with a template object.
func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return "text/plain; charset=utf-8"
}
