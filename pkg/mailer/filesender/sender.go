// Package filesender writes emails to disk instead of delivering them.
// Each email becomes an .html file holding the HTML body and a .json file
// holding everything else, which makes it handy for local development.
package filesender

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Config holds file sender configuration.
type Config struct {
	Dir string `env:"MAILER_FILE_DIR" envDefault:"./tmp/emails"`
}

// Sender implements mailer.Sender by writing files into a directory.
type Sender struct {
	now func() time.Time
	dir string
}

var _ mailer.Sender = (*Sender)(nil)

// New creates a file sender. The directory is created on first send.
func New(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("%w: output directory is required", mailer.ErrInvalidConfig)
	}
	return &Sender{dir: cfg.Dir, now: time.Now}, nil
}

// envelope is the JSON companion of the .html file.
type envelope struct {
	Timestamp   string            `json:"timestamp"`
	From        string            `json:"from,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	To          []string          `json:"to"`
	CC          []string          `json:"cc,omitempty"`
	BCC         []string          `json:"bcc,omitempty"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	_, err := s.Files(ctx, email)
	return err
}

// Files writes email and returns the path of the .html file.
func (s *Sender) Files(ctx context.Context, email *mailer.Email) (string, error) {
	if err := email.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("filesender: failed to create directory: %w", err)
	}

	now := s.now()
	base := filepath.Join(s.dir, fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000000"), identifier(email)))

	htmlPath := base + ".html"
	if err := os.WriteFile(htmlPath, []byte(email.HTML), 0o644); err != nil {
		return "", fmt.Errorf("filesender: failed to write HTML file: %w", err)
	}

	env := envelope{
		Timestamp: now.Format(time.RFC3339),
		From:      email.From,
		ReplyTo:   email.ReplyTo,
		To:        email.To,
		CC:        email.CC,
		BCC:       email.BCC,
		Subject:   email.Subject,
		Text:      email.Text,
		Headers:   email.Headers,
	}
	if len(email.Tags) > 0 {
		env.Tags = make(map[string]string, len(email.Tags))
		for k, v := range email.Tags {
			if _, presence := v.(struct{}); presence {
				env.Tags[k] = "true"
				continue
			}
			env.Tags[k] = fmt.Sprint(v)
		}
	}
	for _, a := range email.Attachments {
		env.Attachments = append(env.Attachments, a.Filename)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("filesender: failed to marshal envelope: %w", err)
	}
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return "", fmt.Errorf("filesender: failed to write JSON file: %w", err)
	}
	return htmlPath, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9\-_.]+`)

// identifier prefers the kind tag, then the subject, for file names.
func identifier(email *mailer.Email) string {
	id := email.Subject
	if kind, ok := email.Tags["kind"].(string); ok && kind != "" {
		id = kind
	}

	id = strings.ReplaceAll(strings.ToLower(id), " ", "_")
	id = strings.Trim(unsafeChars.ReplaceAllString(id, ""), "._")
	if len(id) > 100 {
		id = id[:100]
	}
	if id == "" {
		id = "email"
	}
	return id
}
