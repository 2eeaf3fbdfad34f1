package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"daybook/internal/dashboard"
	"daybook/internal/log"
	"daybook/internal/middleware/ratelimit"
	"daybook/internal/middleware/security"
	"daybook/internal/middleware/trace"
	appweb "daybook/web"
)

// Options configures the dashboard server.
type Options struct {
	Addr               string
	Controller         *dashboard.Controller
	Logger             *log.Logger
	RateLimitPerMinute int
	// Ready is consulted by /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ctrl      *dashboard.Controller
	templates *template.Template
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	ready     func(ctx context.Context) error
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(opts Options) (*Server, error) {
	if opts.Controller == nil {
		return nil, errors.New("dashboard controller is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector := security.NewDetector(logger)
	s := &Server{
		ctrl:      opts.Controller,
		templates: t,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}, logger),
		ready:     opts.Ready,
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /ui/app", s.handleApp)
	mux.HandleFunc("POST /ui/page/{name}", s.handleActivate)
	mux.HandleFunc("POST /identity", s.handleSetIdentity)

	mux.HandleFunc("POST /tasks", s.handleAddTask)
	mux.HandleFunc("POST /tasks/date", s.handleTaskDate)
	mux.HandleFunc("PUT /tasks/{id}", s.handleToggleTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("POST /expenses", s.handleAddExpense)
	mux.HandleFunc("POST /expenses/date", s.handleExpenseDate)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /reports/daily/date", s.handleDailyReportDate)
	mux.HandleFunc("GET /reports/daily", s.handleDailyReport)
	mux.HandleFunc("POST /reports/monthly/period", s.handleMonthlyReportPeriod)
	mux.HandleFunc("GET /reports/monthly", s.handleMonthlyReport)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = trace.NewMiddleware(logger, detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown stops the rate limiter sweep and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// appData is what the "app" template renders.
type appData struct {
	dashboard.Snapshot
	Pages []dashboard.Page
}

var templateFuncs = template.FuncMap{
	"isPage": func(current dashboard.Page, name string) bool { return string(current) == name },
}

func (s *Server) render(ctx context.Context, name string) ([]byte, error) {
	var buf bytes.Buffer
	data := appData{Snapshot: s.ctrl.Snapshot(), Pages: dashboard.Pages}
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(ctx, "Template execution failed",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err.Error())
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeApp re-renders the application shell into b and writes it.
func (s *Server) writeApp(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder) {
	body, err := s.render(r.Context(), "app")
	if err != nil {
		InternalServerError("Error rendering page").Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}
