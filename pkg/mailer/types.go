package mailer

import (
	"fmt"
	"maps"
	"strings"
)

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
//   - Postmark: uses the first tag name only
//   - Resend: uses name-value pairs (presence-only tags become name="true")
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Merge returns a new Tags holding t overlaid with other.
func (t Tags) Merge(other Tags) Tags {
	out := make(Tags, len(t)+len(other))
	maps.Copy(out, t)
	maps.Copy(out, other)
	return out
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Headers     map[string]string `json:"headers,omitempty"`
	Tags        Tags              `json:"tags,omitempty"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html"`
	Text        string            `json:"text,omitempty"`
	From        string            `json:"from,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	To          []string          `json:"to"`
	CC          []string          `json:"cc,omitempty"`
	BCC         []string          `json:"bcc,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// Validate checks that the email can be handed to a Sender.
func (e *Email) Validate() error {
	if e == nil || len(e.To) == 0 || strings.TrimSpace(e.To[0]) == "" {
		return ErrNoRecipient
	}
	if strings.TrimSpace(e.Subject) == "" {
		return ErrNoSubject
	}
	if strings.TrimSpace(e.HTML) == "" {
		return ErrNoContent
	}
	return nil
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	ContentID   string `json:"content_id,omitempty"`
	Content     []byte `json:"content"`
}
