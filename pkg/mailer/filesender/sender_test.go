package filesender

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Dir: " "})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)
}

func TestSender_Files(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	s, err := New(Config{Dir: dir})
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := s.Files(context.Background(), &mailer.Email{
		To:          []string{"ada@shop.test"},
		Subject:     "Order Confirmation #A1",
		HTML:        "<p>Total 11.00</p>",
		Text:        "Total 11.00",
		Tags:        mailer.Tags{"kind": "order-confirmation", "vip": struct{}{}},
		Attachments: []mailer.Attachment{{Filename: "receipt.pdf"}},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2026_03_04_050607.000000_order-confirmation.html"), path)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>Total 11.00</p>", string(html))

	raw, err := os.ReadFile(strings.TrimSuffix(path, ".html") + ".json")
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, []string{"ada@shop.test"}, env.To)
	assert.Equal(t, "Order Confirmation #A1", env.Subject)
	assert.Equal(t, "Total 11.00", env.Text)
	assert.Equal(t, map[string]string{"kind": "order-confirmation", "vip": "true"}, env.Tags)
	assert.Equal(t, []string{"receipt.pdf"}, env.Attachments)
	assert.Equal(t, "2026-03-04T05:06:07Z", env.Timestamp)
}

func TestSender_Send_Invalid(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{To: []string{"ada@shop.test"}, Subject: "x"})
	require.ErrorIs(t, err, mailer.ErrNoContent)
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email *mailer.Email
		want  string
	}{
		{&mailer.Email{Subject: "Contact Form: New Message"}, "contact_form_new_message"},
		{&mailer.Email{Subject: "ignored", Tags: mailer.Tags{"kind": "contact-form"}}, "contact-form"},
		{&mailer.Email{Subject: "!!!"}, "email"},
		{&mailer.Email{Subject: strings.Repeat("a", 150)}, strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, identifier(tt.email))
	}
}
