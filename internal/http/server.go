package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ledgerview/internal/core"
	"ledgerview/internal/log"
	"ledgerview/internal/middleware/ratelimit"
	"ledgerview/internal/middleware/security"
	appweb "ledgerview/web"
)

// Snapshot serves the cached raw tables.
type Snapshot interface {
	Get(ctx context.Context) (core.Tables, error)
	Refresh(ctx context.Context) (core.Tables, error)
}

// Options configures the dashboard server.
type Options struct {
	Year     string
	Currency string
	// Ready checks the data source connection for /readyz. Optional.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
	// RefreshLimit overrides the POST /refresh rate limit.
	RefreshLimit ratelimit.Config
}

type Server struct {
	http.Server
	templates *template.Template
	snapshot  Snapshot
	ready     func(ctx context.Context) error
	year      string
	currency  string
	logger    *log.Logger
	markdown  goldmark.Markdown
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, snap Snapshot, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		snapshot: snap,
		ready:    opts.Ready,
		year:     opts.Year,
		currency: opts.Currency,
		logger:   logger.WithComponent(log.ComponentHTTP),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		limiter:  ratelimit.NewLimiter(opts.RefreshLimit),
	}

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	} else {
		s.templates = t
	}

	s.Handler = s.routes(logger)
	return s
}

func (s *Server) routes(logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.With(security.StaticAssetMiddleware(3600)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/", s.handleIndex)
	r.Get("/accounts", s.handleAccounts)
	r.Get("/report", s.handleReport)
	r.Get("/export.csv", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Get("/chart", s.handleChart)
		r.Get("/summary", s.handleSummary)
		r.Get("/ratios", s.handleRatios)
		r.Get("/breakdown", s.handleBreakdown)
		r.Get("/compare", s.handleCompare)
	})

	r.With(s.limiter.Middleware(ratelimit.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "too many refreshes, try again later").
			Header("Retry-After", "60").
			Write(w)
	})).Post("/refresh", s.handleRefresh)

	return r
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Text("ok").Write(w)
}

// handleReady reports ready once the source answers and a snapshot is available.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", "error", err)
			UnavailableError("source unavailable").Write(w)
			return
		}
	}
	if _, err := s.snapshot.Get(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(ctx, "Snapshot unavailable", "error", err)
		UnavailableError("snapshot unavailable").Write(w)
		return
	}
	NewResponse().Text("ready").Write(w)
}

// tables returns the snapshot or writes a 503. ok is false when the
// response was already written.
func (s *Server) tables(w http.ResponseWriter, r *http.Request) (core.Tables, bool) {
	t, err := s.snapshot.Get(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Snapshot load failed",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		UnavailableError("data source unavailable").Write(w)
		return core.Tables{}, false
	}
	return t, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
		InternalServerError("rendering failed").Write(w)
		return
	}
	NewResponse().Body("text/html; charset=utf-8", buf.Bytes()).Write(w)
}
