package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dmitrymomot/mailroom/pkg/kinds"
	"github.com/dmitrymomot/mailroom/pkg/loader"
	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/sanitizer"
	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

// KindRegistry resolves template ids to kinds.
type KindRegistry interface {
	Get(name string) (kinds.Kind, error)
}

// TemplateLoader returns raw template text by name.
type TemplateLoader interface {
	Load(ctx context.Context, name string) (*loader.Template, error)
}

var (
	_ KindRegistry   = (*kinds.Registry)(nil)
	_ TemplateLoader = (*loader.Loader)(nil)
)

// Mailer renders kind templates and hands the result to a Sender.
// It is safe for concurrent use.
type Mailer struct {
	sender    Sender
	kinds     KindRegistry
	templates TemplateLoader
	engine    *tmpl.Engine
	md        goldmark.Markdown
	logger    *slog.Logger
	config    Config
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithEngine replaces the template engine.
func WithEngine(e *tmpl.Engine) Option {
	return func(m *Mailer) {
		if e != nil {
			m.engine = e
		}
	}
}

// New creates a Mailer. sender may be nil for render-only use.
func New(sender Sender, registry KindRegistry, templates TemplateLoader, cfg Config, opts ...Option) *Mailer {
	m := &Mailer{
		sender:    sender,
		kinds:     registry,
		templates: templates,
		config:    cfg,
		md:        newMarkdown(cfg.ButtonStyle),
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.engine == nil {
		m.engine = tmpl.New(tmpl.WithLogger(m.logger))
	}
	return m
}

// Rendered is a rendered email that has not been sent.
type Rendered struct {
	Kind     string `json:"kind"`
	Template string `json:"template"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
}

// Render renders the email for templateID.
//
// Checks run in order: missing input, unknown kind, template lookup. Render
// anomalies inside the template never fail; they set Degraded instead.
// Subject precedence is frontmatter, then kind, then Config.FallbackSubject.
func (m *Mailer) Render(ctx context.Context, templateID string, vars tmpl.Map) (*Rendered, error) {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" || vars == nil {
		return nil, ErrMissingInput
	}

	kind, err := m.kinds.Get(templateID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithKind(ctx, kind.Name)

	data := kind.PrepareData(vars)

	src, err := m.templates.Load(ctx, kind.Template)
	if err != nil {
		return nil, err
	}

	doc, err := ParseFrontmatter([]byte(src.Text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}

	subjectSrc := doc.Subject()
	if subjectSrc == "" {
		subjectSrc = kind.Subject
	}
	if subjectSrc == "" {
		subjectSrc = m.config.FallbackSubject
	}
	subject, subjectRep := m.engine.Render(ctx, subjectSrc, data)
	subject = strings.Join(strings.Fields(subject), " ")

	var (
		body    string
		bodyRep tmpl.Report
	)
	if src.IsMarkdown() {
		body, bodyRep = m.engine.Render(ctx, doc.Body, escapeMarkdown(data).(tmpl.Map))
		if body, err = m.renderMarkdown(ctx, doc, body, subject); err != nil {
			return nil, err
		}
	} else {
		body, bodyRep = m.engine.Render(ctx, doc.Body, data)
	}

	r := &Rendered{
		Kind:     kind.Name,
		Template: src.Path,
		To:       kind.Recipient(data),
		Subject:  subject,
		HTML:     body,
		Text:     sanitizer.PlainText(body),
		Degraded: bodyRep.Degraded || subjectRep.Degraded,
	}

	m.logger.DebugContext(ctx, "email rendered",
		slog.String("template", src.Path),
		slog.String("source", src.Source),
		slog.Bool("degraded", r.Degraded),
	)
	return r, nil
}

// SendParams contains parameters for sending a kind's email.
type SendParams struct {
	Kind      string   `json:"kind"`
	Variables tmpl.Map `json:"-"`

	// Optional overrides
	To          string       `json:"to,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	From        string       `json:"from,omitempty"`
	ReplyTo     string       `json:"reply_to,omitempty"`
	CC          []string     `json:"cc,omitempty"`
	BCC         []string     `json:"bcc,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Tags        Tags         `json:"tags,omitempty"`
}

// Compose renders p.Kind and builds the Email without sending it.
// Explicit recipient and subject in p win over rendered ones.
func (m *Mailer) Compose(ctx context.Context, p SendParams) (*Email, error) {
	r, err := m.Render(ctx, p.Kind, p.Variables)
	if err != nil {
		return nil, err
	}

	email := &Email{
		To:          []string{firstNonEmpty(p.To, r.To)},
		Subject:     firstNonEmpty(p.Subject, r.Subject),
		HTML:        r.HTML,
		Text:        r.Text,
		From:        firstNonEmpty(p.From, m.config.From),
		ReplyTo:     firstNonEmpty(p.ReplyTo, m.config.ReplyTo),
		CC:          p.CC,
		BCC:         p.BCC,
		Attachments: p.Attachments,
		Tags:        Tags{"kind": r.Kind}.Merge(p.Tags),
	}
	if err := email.Validate(); err != nil {
		return nil, err
	}
	return email, nil
}

// Send renders p.Kind and delivers it. The sent Email is returned.
func (m *Mailer) Send(ctx context.Context, p SendParams) (*Email, error) {
	email, err := m.Compose(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := m.SendRaw(logger.WithKind(ctx, p.Kind), email); err != nil {
		return nil, err
	}
	return email, nil
}

// SendRaw sends a pre-built email without template rendering.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	if m.sender == nil {
		return errors.Join(ErrSendFailed, errors.New("mailer: no sender configured"))
	}

	if err := m.sender.Send(ctx, email); err != nil {
		m.logger.ErrorContext(ctx, "email delivery failed",
			slog.String("to", email.To[0]),
			slog.String("error", err.Error()),
		)
		return errors.Join(ErrSendFailed, err)
	}

	m.logger.InfoContext(ctx, "email sent", slog.String("to", email.To[0]))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
