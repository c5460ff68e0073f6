package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterDelimiter = []byte("---")

// LayoutNone in a template's frontmatter disables the layout.
const LayoutNone = "none"

// Document is a template split into its YAML frontmatter and body.
type Document struct {
	Metadata map[string]any
	Body     string
}

// Subject returns the "Subject" (or "subject") frontmatter field.
func (d *Document) Subject() string {
	return d.field("Subject", "subject")
}

// Layout returns the "layout" frontmatter field, if any.
func (d *Document) Layout() string {
	return d.field("Layout", "layout")
}

func (d *Document) field(keys ...string) string {
	for _, k := range keys {
		if v, ok := d.Metadata[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ParseFrontmatter splits content into frontmatter metadata and body.
//
// Frontmatter is optional. When present it opens with a "---" line and ends
// with the next "---" line. Content without an opening delimiter is returned
// unchanged as the body.
func ParseFrontmatter(content []byte) (*Document, error) {
	first, rest, found := bytes.Cut(content, []byte("\n"))
	if !bytes.Equal(bytes.TrimRight(first, "\r"), frontmatterDelimiter) {
		return &Document{Metadata: map[string]any{}, Body: string(content)}, nil
	}
	if !found {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	remaining := rest
	for consumed := 0; ; {
		line, after, more := bytes.Cut(remaining, []byte("\n"))
		if bytes.Equal(bytes.TrimRight(line, "\r"), frontmatterDelimiter) {
			return decodeFrontmatter(rest[:consumed], after)
		}
		if !more {
			return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		consumed += len(line) + 1
		remaining = after
	}
}

func decodeFrontmatter(head, body []byte) (*Document, error) {
	metadata := map[string]any{}
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
	}
	return &Document{Metadata: metadata, Body: string(body)}, nil
}
