// Package server is the HTTP surface of the portfolio: the page itself, HTMX
// fragments, the animation streams, the contact relay and the admin area.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/cyber-portfolio/internal/analytics"
	"github.com/Zachkp/cyber-portfolio/internal/clock"
	"github.com/Zachkp/cyber-portfolio/internal/content"
	"github.com/Zachkp/cyber-portfolio/internal/mailer"
	"github.com/Zachkp/cyber-portfolio/internal/scanner"
)

//go:embed templates/*.html
var templateFS embed.FS

// Admin holds the admin login. An empty Password disables the admin area.
type Admin struct {
	Username string
	Password string
}

type Options struct {
	Portfolio *content.Portfolio
	Mailer    *mailer.Client
	// Store enables visitor analytics and the admin dashboard when set.
	Store   *analytics.Store
	Tracker *analytics.Tracker
	Admin   Admin

	Scheduler    clock.Scheduler
	ScanMessages []string
	ScanInterval time.Duration

	StaticDir string
	ImagesDir string
	Logger    *slog.Logger
}

type Server struct {
	opts   Options
	engine *gin.Engine
	logger *slog.Logger
	token  string

	// closing ends the open streams once shutdown starts.
	closing   chan struct{}
	closeOnce sync.Once
}

func New(opts Options) (*Server, error) {
	if opts.Portfolio == nil {
		return nil, errors.New("server: portfolio is required")
	}
	if opts.Mailer == nil {
		return nil, errors.New("server: mailer is required")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real()
	}
	if len(opts.ScanMessages) == 0 {
		opts.ScanMessages = scanner.Messages
	}
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = scanner.DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if _, err := opts.Portfolio.TerminalConfig(); err != nil {
		return nil, err
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:    opts,
		logger:  opts.Logger,
		token:   analytics.RandomToken(),
		closing: make(chan struct{}),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if opts.Tracker != nil {
		r.Use(opts.Tracker.Middleware())
	}
	r.SetHTMLTemplate(tmpl)
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}
	if opts.ImagesDir != "" {
		r.Static("/images", opts.ImagesDir)
	}

	s.engine = r
	s.setupPortfolioRoutes(r)
	s.setupStreamRoutes(r)
	s.setupContactRoutes(r)
	s.setupAdminRoutes(r)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. Shutdown ends the open terminal and
// scan streams so it does not wait for browsers to hang up.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.endStreams)
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if s.opts.Tracker != nil {
		s.opts.Tracker.Wait()
	}
	s.logger.Info("server: stopped")
	return nil
}

func (s *Server) endStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"join":  strings.Join,
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

// requestLogger writes one slog line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
