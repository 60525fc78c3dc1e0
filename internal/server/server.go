// Package server serves HTML previews of the intake form and the brand
// stylesheet, plus a validation endpoint for create payloads.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-pawhealth/pkg/branding"
	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/intake"
	"github.com/goliatone/go-pawhealth/pkg/merge"
	"github.com/goliatone/go-pawhealth/pkg/render"
	"github.com/goliatone/go-pawhealth/pkg/renderers/html"
)

const maxBodyBytes = 1 << 20

// FormSource provides the server-side onboarding form declarations.
type FormSource interface {
	OnboardingForm(ctx context.Context) ([]fields.Declaration, error)
}

// Server is the preview HTTP handler.
type Server struct {
	router   chi.Router
	forms    FormSource
	renderer render.Renderer
	sheet    *branding.Stylesheet
	brand    branding.Settings
	logger   *zap.Logger
}

// Option configures the server.
type Option func(*Server)

// WithFormSource loads the onboarding form from src instead of the built-in
// default.
func WithFormSource(src FormSource) Option {
	return func(s *Server) {
		s.forms = src
	}
}

// WithBrand sets the brand colours applied to previews and styles.css.
func WithBrand(settings branding.Settings) Option {
	return func(s *Server) {
		s.brand = settings.Normalize()
	}
}

// WithRenderer overrides the preview renderer.
func WithRenderer(r render.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs the server and its routes.
func New(options ...Option) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		brand:  branding.Defaults(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		r, err := html.New(html.WithStylesheets("/styles.css"))
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		s.renderer = r
	}
	sheet, err := branding.NewStylesheet()
	if err != nil {
		return nil, fmt.Errorf("server: stylesheet: %w", err)
	}
	s.sheet = sheet
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("dur", time.Since(start)),
			)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/styles.css", s.handleStyles)
	s.router.Get("/preview/onboarding", s.handlePreview)
	s.router.Post("/preview/validate", s.handleValidate)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	css, err := s.sheet.Render(s.brand)
	if err != nil {
		s.logger.Error("server: render stylesheet", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = io.WriteString(w, css)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decls, err := s.declarations(ctx)
	if err != nil {
		s.logger.Warn("server: onboarding form unavailable", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}

	form := render.NewForm("Tell us about your dog", merge.Merge(decls, nil))
	form.ID = "onboarding"
	form.Action = "/preview/validate"

	opts := render.RenderOptions{Theme: s.brand.RendererConfig()}
	if dogID := r.URL.Query().Get("dog_id"); dogID != "" {
		opts.Hidden = append(opts.Hidden, render.DogID(dogID))
	}

	out, err := s.renderer.Render(ctx, form, opts)
	if err != nil {
		s.logger.Error("server: render preview", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) declarations(ctx context.Context) ([]fields.Declaration, error) {
	if s.forms != nil {
		decls, err := s.forms.OnboardingForm(ctx)
		if err != nil {
			return nil, err
		}
		if len(decls) > 0 {
			return decls, nil
		}
	}
	return fields.DefaultOnboarding()
}

type validateResponse struct {
	Valid  bool           `json:"valid"`
	Issues []intake.Issue `json:"issues,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	issues, err := intake.ValidatePayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(issues) > 0 {
		s.logger.Debug("server: payload rejected", zap.Int("issues", len(issues)))
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Issues: issues})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server: listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
