package tmpl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

// DefaultMaxPasses bounds the if-resolution loop.
// Well-formed templates nested deeper than this are degraded.
const DefaultMaxPasses = 50

// guardMark stands in for "{" in values substituted inside each-block
// bodies so later passes never read data as tags. It is turned back into
// "{" once rendering is complete.
const guardMark = "\uE000"

// Report describes how a render went.
type Report struct {
	// Passes is the number of if-resolution passes over the document.
	Passes int
	// Stripped counts control tags removed without being resolved.
	Stripped int
	// Degraded is set when malformed or too deeply nested control tags
	// had to be stripped instead of resolved.
	Degraded bool
}

func (r *Report) strip(n int) {
	if n <= 0 {
		return
	}
	r.Stripped += n
	r.Degraded = true
}

// Engine renders templates. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	logger    *slog.Logger
	maxPasses int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPasses overrides DefaultMaxPasses. Non-positive values are ignored.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithLogger sets the logger used to report degraded renders.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxPasses: DefaultMaxPasses,
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render renders src against data and logs a warning when the output
// had to be degraded.
func (e *Engine) Render(ctx context.Context, src string, data Map) (string, Report) {
	out, rep := e.Execute(src, data)
	if rep.Degraded && e.logger != nil {
		e.logger.WarnContext(ctx, "template rendered with unresolved control tags",
			slog.Int("passes", rep.Passes),
			slog.Int("stripped_tags", rep.Stripped),
		)
	}
	return out, rep
}

// Execute renders src against data in three passes: each-block expansion,
// if/else resolution and variable substitution. It never fails; malformed
// control tags are stripped and reported.
func (e *Engine) Execute(src string, data Map) (string, Report) {
	var rep Report
	root := scope{data}

	out := e.expandEach(src, data, &rep)
	out = e.resolveConditionals(out, root, &rep)
	out = substitute(out, root, false, &rep)

	if strings.Contains(out, guardMark) {
		out = strings.ReplaceAll(out, guardMark, "{")
	}
	return out, rep
}

// Render renders src against data with default settings.
func Render(src string, data Map) (string, Report) {
	return New().Execute(src, data)
}
