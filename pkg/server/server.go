// Package server is the HTTP surface over the form engine: one page route
// that renders the form or its submission history, one JSON submission
// endpoint, a health probe, and the embedded runtime assets.
package server

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vstopensource/formfill/pkg/render/template"
	"github.com/vstopensource/formfill/pkg/render/template/pongo2tpl"
	"github.com/vstopensource/formfill/pkg/renderers/vanilla"
	"github.com/vstopensource/formfill/pkg/store"
	"github.com/vstopensource/formfill/pkg/submission"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Option func(*Server)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRenderer overrides the HTML form renderer.
func WithRenderer(r *vanilla.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTemplatesFS supplies an alternate page template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(s *Server) {
		if files != nil {
			s.templateFS = files
		}
	}
}

// Server wires the engine packages behind echo routes.
type Server struct {
	echo       *echo.Echo
	store      store.DocumentStore
	pipeline   *submission.Pipeline
	renderer   *vanilla.Renderer
	templates  template.Renderer
	templateFS fs.FS
	log        *slog.Logger
	now        func() time.Time
	secret     []byte
}

// New builds the server. The secret verifies bearer tokens; token issuance is
// out of scope here.
func New(st store.DocumentStore, secret []byte, options ...Option) (*Server, error) {
	s := &Server{
		echo:       echo.New(),
		store:      st,
		renderer:   vanilla.New(),
		templateFS: templatesFS,
		log:        slog.Default(),
		now:        time.Now,
		secret:     secret,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.pipeline = submission.New(st, submission.WithLogger(s.log), submission.WithClock(s.now))

	engine, err := pongo2tpl.New(
		pongo2tpl.WithFS(s.templateFS),
		pongo2tpl.WithExtension(".html"),
	)
	if err != nil {
		return nil, fmt.Errorf("server: configure template engine: %w", err)
	}
	s.templates = engine

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/assets/*", echo.WrapHandler(
		http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS())))))

	forms := s.echo.Group("/forms", identityMiddleware(s.secret))
	forms.GET("/:formId", s.handleFormPage, s.formContextMiddleware)
	forms.POST("/:formId/submissions", s.handleSubmit, s.formContextMiddleware)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start runs the HTTP listener.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := s.now()
		err := next(c)
		s.log.Info("request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start))
		return err
	}
}
