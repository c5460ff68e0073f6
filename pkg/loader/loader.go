package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

// NamePlaceholder is replaced by the requested template name in candidate patterns.
const NamePlaceholder = "{name}"

// DefaultCandidates is the probing order used for every source.
var DefaultCandidates = []string{
	"{name}",
	"{name}.html",
	"{name}.md",
	"emails/{name}",
	"emails/{name}.html",
	"emails/{name}.md",
	"templates/{name}.html",
	"templates/{name}.md",
}

// Template is raw template text together with where it was found.
type Template struct {
	// Name is the requested identifier.
	Name string `json:"name"`
	// Path is the candidate that matched, e.g. "emails/order-confirmation.html".
	Path string `json:"path"`
	// Source names the backend the text came from.
	Source string `json:"source"`
	// Text is the raw template source.
	Text string `json:"text"`
}

// IsMarkdown reports whether the template was resolved from a markdown file.
func (t Template) IsMarkdown() bool {
	switch strings.ToLower(path.Ext(t.Path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Loader resolves template names against an ordered list of sources and
// caches the result.
type Loader struct {
	cache      Cache
	logger     *slog.Logger
	sources    []Source
	candidates []string
	group      singleflight.Group
	ttl        time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithSource appends a source. Sources are searched in the order added.
func WithSource(s Source) Option {
	return func(l *Loader) {
		if s != nil {
			l.sources = append(l.sources, s)
		}
	}
}

// WithCandidates replaces DefaultCandidates. Every pattern should contain
// NamePlaceholder.
func WithCandidates(patterns ...string) Option {
	return func(l *Loader) {
		if len(patterns) > 0 {
			l.candidates = patterns
		}
	}
}

// WithCache enables caching of loaded templates for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = c
		l.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		candidates: DefaultCandidates,
		logger:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the template called name.
//
// Each source is searched with every candidate pattern in order and the first
// hit wins. A failing source is logged and skipped. When nothing matches the
// error wraps ErrTemplateNotFound. Concurrent loads of the same name share a
// single lookup.
func (l *Loader) Load(ctx context.Context, name string) (*Template, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		t, err := l.cache.Get(ctx, name)
		if err == nil {
			return &t, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			l.logger.WarnContext(ctx, "template cache read failed",
				slog.String("template", name),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared lookup outlives any single caller; each caller stops
	// waiting when its own context is done.
	ch := l.group.DoChan(name, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		t, err := l.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		if l.cache != nil {
			if err := l.cache.Set(ctx, name, t, l.ttl); err != nil {
				l.logger.WarnContext(ctx, "template cache write failed",
					slog.String("template", name),
					slog.String("error", err.Error()),
				)
			}
		}
		return t, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	t := res.Val.(Template)
	return &t, nil
}

// Invalidate drops name from the cache so the next Load reads the sources.
func (l *Loader) Invalidate(ctx context.Context, name string) error {
	if l.cache == nil {
		return nil
	}
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return l.cache.Delete(ctx, name)
}

// InvalidateAll empties the cache.
func (l *Loader) InvalidateAll(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Clear(ctx)
}

// Warm reloads every named template from the sources into the cache.
// All names are attempted; the errors are joined.
func (l *Loader) Warm(ctx context.Context, names ...string) error {
	var errs []error
	for _, name := range names {
		if err := l.Invalidate(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := l.Load(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Candidates returns the resource names probed for name, in order.
func (l *Loader) Candidates(name string) []string {
	out := make([]string, 0, len(l.candidates))
	seen := make(map[string]struct{}, len(l.candidates))
	for _, pattern := range l.candidates {
		p := strings.ReplaceAll(pattern, NamePlaceholder, name)
		if !fs.ValidPath(p) {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (l *Loader) resolve(ctx context.Context, name string) (Template, error) {
	candidates := l.Candidates(name)

	var failures []error
	for _, src := range l.sources {
		for _, p := range candidates {
			data, err := src.Read(ctx, p)
			if err == nil {
				l.logger.DebugContext(ctx, "template loaded",
					slog.String("template", name),
					slog.String("path", p),
					slog.String("source", src.Name()),
				)
				return Template{Name: name, Path: p, Source: src.Name(), Text: string(data)}, nil
			}
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			l.logger.WarnContext(ctx, "template source failed",
				slog.String("template", name),
				slog.String("source", src.Name()),
				slog.String("error", err.Error()),
			)
			failures = append(failures, fmt.Errorf("%w: %s: %v", ErrSourceFailed, src.Name(), err))
			break
		}
	}

	notFound := fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	if len(failures) > 0 {
		return Template{}, errors.Join(append([]error{notFound}, failures...)...)
	}
	return Template{}, notFound
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
