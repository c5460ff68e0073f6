package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dmitrymomot/mailroom/pkg/loader"
	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

// markdownEscaper backslash-escapes the punctuation that starts markdown
// emphasis, code, links, images, buttons, headings, quotes, tables or raw HTML.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"!", `\!`,
	"|", `\|`,
	"~", `\~`,
)

// escapeMarkdown returns a copy of v with every string escaped, so data
// substituted into a markdown body stays literal text.
func escapeMarkdown(v tmpl.Value) tmpl.Value {
	switch x := v.(type) {
	case tmpl.String:
		return tmpl.String(markdownEscaper.Replace(string(x)))
	case tmpl.List:
		out := make(tmpl.List, len(x))
		for i, item := range x {
			out[i] = escapeMarkdown(item)
		}
		return out
	case tmpl.Map:
		out := make(tmpl.Map, len(x))
		for k, item := range x {
			out[k] = escapeMarkdown(item)
		}
		return out
	default:
		return v
	}
}

// layoutData is what layouts see: {{.Content}}, {{.Subject}} and
// {{.Metadata.key}} for frontmatter fields.
type layoutData struct {
	Metadata map[string]any
	Content  template.HTML
	Subject  string
}

func newMarkdown(buttonStyle string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			NewButtonExtension(buttonStyle),
		),
		// Templates are trusted and may embed raw HTML.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// renderMarkdown converts an engine-rendered markdown body to HTML and wraps
// it in the layout selected by frontmatter or config.
func (m *Mailer) renderMarkdown(ctx context.Context, doc *Document, body, subject string) (string, error) {
	var content bytes.Buffer
	if err := m.md.Convert([]byte(body), &content); err != nil {
		return "", fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
	}

	name := doc.Layout()
	if name == "" {
		name = m.config.layout()
	}
	if name == LayoutNone {
		return content.String(), nil
	}

	src, err := m.templates.Load(ctx, name)
	if err != nil {
		if errors.Is(err, loader.ErrTemplateNotFound) {
			return "", fmt.Errorf("%w: %q", ErrLayoutNotFound, name)
		}
		return "", err
	}

	layout, err := template.New(name).Parse(src.Text)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse layout %q: %v", ErrRenderFailed, name, err)
	}

	var out bytes.Buffer
	if err := layout.Execute(&out, layoutData{
		Metadata: doc.Metadata,
		Content:  template.HTML(content.String()), //nolint:gosec // trusted template output
		Subject:  subject,
	}); err != nil {
		return "", fmt.Errorf("%w: failed to execute layout %q: %v", ErrRenderFailed, name, err)
	}
	return out.String(), nil
}
