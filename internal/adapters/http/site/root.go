// Package site serves the employee attrition web form.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// Error constants
var (
	ErrTemplate = errors.New("form template failed")
	ErrRender   = errors.New("form render failed")
)

// leftColumnSize is the number of fields in the first form column.
const leftColumnSize = 10

// Form submission outcomes reported to metrics.
const (
	outcomeRendered = "rendered"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "failed"
)

// Predictor is what the form needs from the application service.
type Predictor interface {
	Predict(ctx context.Context, r *employee.Record) (prediction.Result, error)
	Schema() employee.Schema
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets a custom logger for the handler.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRequestTimeout bounds each prediction call.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// Handler renders the form on GET / and the prediction on POST /.
type Handler struct {
	deps    Predictor
	tmpl    *template.Template
	timeout time.Duration
	logger  logger.Logger
}

// NewHandler parses the embedded templates and returns a form handler.
func NewHandler(deps Predictor, opts ...Option) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	h := &Handler{deps: deps, tmpl: tmpl, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}
	return h, nil
}

// Register attaches the form and its assets to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/", api.MetricsMiddleware(h.HandleRoot, "form"))
}

// HandleRoot handles GET and POST requests on /.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, http.StatusOK, h.newPage(defaultValues(h.deps.Schema()), nil))
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		metrics.RecordFormSubmission(outcomeInvalid)
		p := h.newPage(defaultValues(h.deps.Schema()), nil)
		p.Error = "The form could not be read. Please submit it again."
		h.render(w, r, http.StatusBadRequest, p)
		return
	}
	submitted := r.PostForm.Get

	in, err := api.ValidateForm(submitted)
	if err != nil {
		var ie *api.InputError
		if !errors.As(err, &ie) {
			ie = &api.InputError{}
		}
		metrics.RecordFormSubmission(outcomeInvalid)
		h.logger.Debug(ctx, "form rejected",
			logger.String("requestId", api.RequestIDFrom(ctx)),
			logger.Error(err),
		)
		p := h.newPage(submitted, ie)
		p.Error = "Some values are outside their allowed ranges. Please correct the highlighted fields."
		h.render(w, r, http.StatusUnprocessableEntity, p)
		return
	}

	pctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	res, err := h.deps.Predict(pctx, in.Record(h.deps.Schema()))
	if err != nil {
		metrics.RecordFormSubmission(outcomeFailed)
		h.logger.Error(ctx, "form prediction failed",
			logger.String("requestId", api.RequestIDFrom(ctx)),
			logger.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, employee.ErrSchemaMismatch) {
			status = http.StatusUnprocessableEntity
		}
		p := h.newPage(submitted, nil)
		p.Error = "The prediction could not be made. Please try again later."
		h.render(w, r, status, p)
		return
	}

	metrics.RecordFormSubmission(outcomeRendered)
	p := h.newPage(submitted, nil)
	p.Result = newResultView(res)
	h.render(w, r, http.StatusOK, p)
}

// render executes the page into a buffer so a template failure never leaves
// a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", p); err != nil {
		h.logger.Error(r.Context(), "render form", logger.Error(fmt.Errorf("%w: %w", ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}
