package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"gasledger/internal/cache"
	"gasledger/internal/core"
	"gasledger/internal/export"
	"gasledger/internal/ledger"
	"gasledger/internal/log"
	"gasledger/internal/middleware/security"
	appweb "gasledger/web"
)

// Writes allowed per client and minute.
const writesPerMinute = 120

const (
	reportCacheSize = 16
	reportCacheTTL  = 10 * time.Minute
)

type Options struct {
	Addr          string
	Store         *ledger.Store
	Exporter      *export.Exporter
	Currency      core.Currency
	StrictNumbers bool
	Logger        *log.Logger

	// Ready backs /readyz. nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	store       *ledger.Store
	exporter    *export.Exporter
	currency    core.Currency
	strict      bool
	numbers     numberParser
	templates   *template.Template
	logger      *log.Logger
	ready       func(ctx context.Context) error
	rateLimiter *rateLimiter
	reports     *cache.Reports
	caches      *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		store:       opts.Store,
		exporter:    opts.Exporter,
		currency:    opts.Currency,
		strict:      opts.StrictNumbers,
		numbers:     numberParser{strict: opts.StrictNumbers},
		logger:      logger,
		ready:       opts.Ready,
		rateLimiter: newRateLimiter(writesPerMinute, time.Minute),
		reports:     cache.NewReports(reportCacheSize, reportCacheTTL),
		caches:      cache.NewManager(logger),
	}
	s.caches.Register(s.reports)
	s.caches.StartCleanup(reportCacheTTL)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/ledger", s.handleLedgerJSON)
	mux.HandleFunc("POST /date", s.handleSetDate)

	mux.HandleFunc("POST /sales", s.handleAddSale)
	mux.HandleFunc("POST /sales/{index}/delete", s.handleDeleteSale)
	mux.HandleFunc("POST /sales/{index}/edit", s.handleBeginEditSale)
	mux.HandleFunc("POST /sales/edit", s.handleCommitSale)

	mux.HandleFunc("POST /expenses", s.handleAddExpense)
	mux.HandleFunc("POST /expenses/{index}/delete", s.handleDeleteExpense)
	mux.HandleFunc("POST /expenses/{index}/edit", s.handleBeginEditExpense)
	mux.HandleFunc("POST /expenses/edit", s.handleCommitExpense)

	mux.HandleFunc("GET /export/xlsx", s.handleExportWorkbook)
	mux.HandleFunc("GET /export/pdf", s.handleExportPDF)

	var handler http.Handler = s.withRateLimit(mux)
	handler = s.withAccessLog(handler)
	handler = log.RequestIDMiddleware(requestID)(handler)
	handler = log.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// withAccessLog adds the client address to the request logger and writes
// one access log line per request.
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := log.FromContext(r.Context()).With(log.FieldClientIP, extractClientIP(r))
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.AccessLog(ctx, reqLogger, r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds())
	})
}

// withRateLimit throttles ledger writes per client.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.rateLimiter.allow(extractClientIP(r)) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background cleanups and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
