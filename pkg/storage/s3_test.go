package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		b, err := New(Config{
			Bucket:    "templates",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
			Prefix:    "/emails/",
		})
		require.NoError(t, err)
		require.NotNil(t, b.client)
		require.Equal(t, DefaultRegion, b.cfg.Region)
		require.Equal(t, int64(DefaultMaxObjectSize), b.cfg.MaxObjectSize)
		require.Equal(t, "emails", b.cfg.Prefix)
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()

		b, err := New(Config{
			Bucket:    "templates",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, b)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		for _, cfg := range []Config{
			{},
			{Bucket: "b", AccessKey: "a"},
			{Bucket: "b", SecretKey: "s"},
			{AccessKey: "a", SecretKey: "s"},
		} {
			_, err := New(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		}
	})
}

func TestConfig_Keys(t *testing.T) {
	t.Parallel()

	t.Run("with prefix", func(t *testing.T) {
		t.Parallel()

		cfg := Config{Prefix: "emails"}
		require.Equal(t, "emails/order.html", cfg.objectKey("order.html"))
		require.Equal(t, "emails/layouts/base.html", cfg.objectKey("/layouts/base.html"))
		require.Equal(t, "order.html", cfg.templateName("emails/order.html"))
	})

	t.Run("without prefix", func(t *testing.T) {
		t.Parallel()

		cfg := Config{}
		require.Equal(t, "order.html", cfg.objectKey("order.html"))
		require.Equal(t, "order.html", cfg.templateName("order.html"))
	})

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()

		require.False(t, Config{}.Enabled())
		require.True(t, Config{Bucket: "b"}.Enabled())
	})
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"order.html":   "text/html; charset=utf-8",
		"ORDER.HTM":    "text/html; charset=utf-8",
		"welcome.md":   "text/markdown; charset=utf-8",
		"kinds.yaml":   "application/yaml",
		"notes":        "text/plain; charset=utf-8",
		"contact.text": "text/plain; charset=utf-8",
	}
	for name, want := range tests {
		require.Equal(t, want, contentTypeFor(name), name)
	}
}
