// Package postmark delivers mailer emails through Postmark's transactional API.
package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// ErrAPI wraps Postmark API-level rejections.
var ErrAPI = errors.New("postmark: api error")

// primaryTag is the mailer tag used as the Postmark Tag when present.
const primaryTag = "kind"

// Sender implements mailer.Sender using Postmark.
type Sender struct {
	client *postmark.Client
	config Config
}

var _ mailer.Sender = (*Sender)(nil)

// New creates a Postmark-backed sender.
func New(cfg Config) (*Sender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", mailer.ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: postmark sender email is required", mailer.ErrInvalidConfig)
	}
	return &Sender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		config: cfg,
	}, nil
}

// Send implements mailer.Sender. Link tracking is limited to the HTML part.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, s.message(email))
	if err != nil {
		return fmt.Errorf("postmark: failed to send email: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("%w: %d %s", ErrAPI, resp.ErrorCode, resp.Message)
	}
	return nil
}

func (s *Sender) message(email *mailer.Email) postmark.Email {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	tag, metadata := splitTags(email.Tags)

	msg := postmark.Email{
		From:          from,
		To:            strings.Join(email.To, ","),
		Cc:            strings.Join(email.CC, ","),
		Bcc:           strings.Join(email.BCC, ","),
		ReplyTo:       email.ReplyTo,
		Subject:       email.Subject,
		Tag:           tag,
		HTMLBody:      email.HTML,
		TextBody:      email.Text,
		TrackOpens:    s.config.TrackOpens,
		TrackLinks:    "HtmlOnly",
		MessageStream: s.config.MessageStream,
		Metadata:      metadata,
	}

	if len(email.Headers) > 0 {
		names := make([]string, 0, len(email.Headers))
		for name := range email.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			msg.Headers = append(msg.Headers, postmark.Header{Name: name, Value: email.Headers[name]})
		}
	}

	for _, a := range email.Attachments {
		msg.Attachments = append(msg.Attachments, postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
		})
	}
	return msg
}

// splitTags maps mailer tags onto Postmark's single Tag plus string metadata.
// The "kind" tag wins; otherwise the first presence-only tag by name is used.
func splitTags(tags mailer.Tags) (string, map[string]string) {
	if len(tags) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	var tag string
	if v, ok := tags[primaryTag].(string); ok {
		tag = v
	}

	metadata := make(map[string]string, len(tags))
	for _, name := range names {
		switch v := tags[name].(type) {
		case struct{}, nil:
			if tag == "" {
				tag = name
			}
		default:
			metadata[name] = fmt.Sprint(v)
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}
	return tag, metadata
}
