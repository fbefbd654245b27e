package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/render"
	"cashflow/internal/services"
	appweb "cashflow/web"
)

// Projector runs a projection over a staged source file.
type Projector interface {
	RunLabeled(ctx context.Context, source, label string, mode services.Mode) (services.Result, error)
}

// RunLister exposes the run log.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]core.RunSummary, error)
	GetRun(ctx context.Context, id string) (core.RunSummary, error)
}

// Pinger is checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the web server. Runs and Ready are optional.
type Options struct {
	Addr               string
	UploadDir          string
	MaxUploadBytes     int64
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
	CacheSize          int
	CacheTTL           time.Duration

	Projector Projector
	Runs      RunLister
	Ready     []Pinger
	Logger    *log.Logger
	Now       func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	opts      Options
	logger    *log.Logger

	projector Projector
	runs      RunLister

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	// Rendered reports keyed by upload content and period.
	reports      *cache.LRUCache[render.Report]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Projector == nil {
		return nil, errors.New("http server: projector is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if err := os.MkdirAll(opts.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		templates: t,
		opts:      opts,
		logger:    logger,
		projector: opts.Projector,
		runs:      opts.Runs,
		detector:  detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			Requests: opts.RateLimitPerMinute,
			Window:   time.Minute,
		}),
		tracer:       trace.NewMiddleware(opts.Logger, detector.ExtractClientIP),
		cacheManager: cache.NewManager(opts.Logger),
	}
	if opts.CacheSize > 0 {
		s.reports = cache.NewLRUCache[render.Report](opts.CacheSize, opts.CacheTTL)
		s.cacheManager.Register(s.reports)
		s.cacheManager.StartCleanup(opts.CacheTTL)
	}

	mux := http.NewServeMux()
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssets(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(static)))))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /display/", s.handleDisplay)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited, http.MethodPost)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = detector.Middleware(opts.Logger)(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       opts.RequestTimeout,
		WriteTimeout:      2 * opts.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, p := range s.opts.Ready {
		if err := p.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
