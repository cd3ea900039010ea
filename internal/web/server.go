package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"blogcast/internal/domain"
	"blogcast/internal/podcast"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Generator interface {
	Run(ctx context.Context, req podcast.Request) (*podcast.Result, error)
	DefaultMode() domain.Mode
}

type Artifacts interface {
	Lookup(id string) (*podcast.Artifact, error)
}

// Store is the generation history backing /history and /healthz.
type Store interface {
	ListRecentGenerations(ctx context.Context, limit int) ([]domain.Generation, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	Ping(ctx context.Context) error
}

type Config struct {
	ServerKeys podcast.Keys
	// OpenAIKeyRequired reports whether the default mode needs an OpenAI key.
	OpenAIKeyRequired bool
	GenerateTimeout   time.Duration
	// GenerateLimit is the number of POST /generate requests allowed per IP
	// within GenerateWindow. Zero disables rate limiting.
	GenerateLimit  int
	GenerateWindow time.Duration
	HistoryLimit   int
}

// Server renders the podcast form and serves generated files.
type Server struct {
	generator Generator
	artifacts Artifacts
	store     Store
	cfg       Config
	pages     map[string]*template.Template
	log       *slog.Logger

	// generateMu serializes pipeline runs; a second submit waits for the first.
	generateMu sync.Mutex
}

func New(generator Generator, artifacts Artifacts, store Store, cfg Config, log *slog.Logger) (*Server, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "history.html"} {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 5 * time.Minute
	}
	if cfg.GenerateWindow <= 0 {
		cfg.GenerateWindow = time.Minute
	}

	return &Server{
		generator: generator,
		artifacts: artifacts,
		store:     store,
		cfg:       cfg,
		pages:     pages,
		log:       log,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		withSentryRecovery,
	)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/history", s.handleHistory)

	r.Group(func(gr chi.Router) {
		if s.cfg.GenerateLimit > 0 {
			gr.Use(httprate.LimitByIP(s.cfg.GenerateLimit, s.cfg.GenerateWindow))
		}
		gr.Post("/generate", s.handleGenerate)
	})

	r.Get("/podcasts/{id}", s.handlePodcast)
	r.Get("/podcasts/{id}/download", s.handleDownload)

	return r
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context.
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}
