package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/mailroom/internal/delivery"
	"github.com/dmitrymomot/mailroom/internal/store"
	"github.com/dmitrymomot/mailroom/pkg/health"
	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

// Renderer renders a kind. *mailer.Mailer implements it.
type Renderer interface {
	Render(ctx context.Context, kind string, vars tmpl.Map) (*mailer.Rendered, error)
}

// Deliveries accepts sends and reports their state. *delivery.Service
// implements it.
type Deliveries interface {
	Submit(ctx context.Context, p mailer.SendParams) (*delivery.Receipt, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Delivery, error)
}

// KindLister lists configured kinds. *kinds.Registry implements it.
type KindLister interface {
	Names() []string
}

// Handler serves the HTTP API.
type Handler struct {
	renderer   Renderer
	deliveries Deliveries
	kinds      KindLister
	checks     health.Checks
	logger     *slog.Logger
	cfg        Config
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithChecks sets the readiness checks served on /health.
func WithChecks(c health.Checks) Option {
	return func(h *Handler) {
		h.checks = c
	}
}

// WithKinds enables GET /v1/kinds.
func WithKinds(k KindLister) Option {
	return func(h *Handler) {
		h.kinds = k
	}
}

// NewHandler creates the API handler.
func NewHandler(r Renderer, d Deliveries, cfg Config, opts ...Option) *Handler {
	h := &Handler{
		renderer:   r,
		deliveries: d,
		cfg:        cfg,
		logger:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(recoverer(h.logger))
	if h.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(h.cfg.RequestTimeout))
	}

	r.Get("/health", health.ReadinessHandler(h.checks, health.WithLogger(h.logger)))
	r.Get("/health/live", health.LivenessHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Get("/kinds", h.handle(h.listKinds))
		r.Post("/emails/{kind}/render", h.handle(h.render))
		r.Post("/emails/{kind}/send", h.handle(h.send))
		r.Get("/deliveries/{id}", h.handle(h.getDelivery))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, newHTTPError(http.StatusNotFound, CodeNotFound, "route not found", nil))
	})
	return r
}

// handlerFunc is an endpoint that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		he := toHTTPError(err)
		if he.Status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "request failed",
				slog.String("code", he.Code),
				slog.Any("error", err),
			)
		}
		writeError(w, r, he)
	}
}

// emailRequest is the body of the render and send endpoints.
type emailRequest struct {
	Variables map[string]any `json:"variables"`
	To        string         `json:"to,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	From      string         `json:"from,omitempty"`
	ReplyTo   string         `json:"reply_to,omitempty"`
	CC        []string       `json:"cc,omitempty"`
	BCC       []string       `json:"bcc,omitempty"`
	Tags      mailer.Tags    `json:"tags,omitempty"`
}

type renderResponse struct {
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	To       string `json:"to"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) error {
	req, err := h.decodeEmailRequest(w, r)
	if err != nil {
		return err
	}

	out, err := h.renderer.Render(r.Context(), chi.URLParam(r, "kind"), tmpl.MapFromAny(req.Variables))
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, renderResponse{
		Kind:     out.Kind,
		Subject:  out.Subject,
		To:       out.To,
		HTML:     out.HTML,
		Text:     out.Text,
		Degraded: out.Degraded,
	})
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) error {
	req, err := h.decodeEmailRequest(w, r)
	if err != nil {
		return err
	}

	rec, err := h.deliveries.Submit(r.Context(), mailer.SendParams{
		Kind:      chi.URLParam(r, "kind"),
		Variables: tmpl.MapFromAny(req.Variables),
		To:        req.To,
		Subject:   req.Subject,
		From:      req.From,
		ReplyTo:   req.ReplyTo,
		CC:        req.CC,
		BCC:       req.BCC,
		Tags:      req.Tags,
	})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if rec.Queued {
		status = http.StatusAccepted
	}
	return writeJSON(w, status, rec)
}

func (h *Handler) getDelivery(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return newHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid delivery id", err)
	}

	d, err := h.deliveries.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, d)
}

func (h *Handler) listKinds(w http.ResponseWriter, _ *http.Request) error {
	names := []string{}
	if h.kinds != nil {
		names = h.kinds.Names()
	}
	return writeJSON(w, http.StatusOK, map[string][]string{"kinds": names})
}

// decodeEmailRequest reads a single JSON object. Numbers are kept as
// json.Number so large integers survive the trip into template data.
func (h *Handler) decodeEmailRequest(w http.ResponseWriter, r *http.Request) (*emailRequest, error) {
	body := io.Reader(r.Body)
	if h.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()

	var req emailRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newHTTPError(http.StatusBadRequest, CodeMissingInput, mailer.ErrMissingInput.Error(), err)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, newHTTPError(http.StatusRequestEntityTooLarge, CodeInvalidRequest,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), err)
		}
		return nil, newHTTPError(http.StatusBadRequest, CodeInvalidRequest, "malformed JSON body", err)
	}
	if dec.More() {
		return nil, newHTTPError(http.StatusBadRequest, CodeInvalidRequest, "body must contain a single JSON object", nil)
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, he *HTTPError) {
	var body errorBody
	body.Error.Code = he.Code
	body.Error.Message = strings.TrimSpace(he.Message)
	body.Error.RequestID = middleware.GetReqID(r.Context())
	_ = writeJSON(w, he.Status, body)
}
