// Package server exposes the storytelling pipeline to a browser.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/config"
	"github.com/vocaltales/storyteller/pkg/pipeline"
	"github.com/vocaltales/storyteller/pkg/session"
	"github.com/vocaltales/storyteller/web"
)

const (
	SessionCookieName = "vocaltales_session"
	maxUploadBytes    = 32 << 20
	sessionCookieAge  = 30 * 24 * time.Hour
)

// Runner runs one turn for a session.
type Runner interface {
	Turn(ctx context.Context, sess *session.Session, audioPath string) (pipeline.Result, error)
	Tell(ctx context.Context, sess *session.Session, text string) (pipeline.Result, error)
}

type Options struct {
	Voices       config.Voices
	DefaultVoice string
	ImagePath    string
	SpeechPath   string
	SpeechDelay  time.Duration

	// Basic auth is enabled only when both are set.
	Username string
	Password string
}

type Server struct {
	runner Runner
	store  session.Store
	opts   Options
	locks  *sessionLocks
}

func New(runner Runner, store session.Store, opts Options) *Server {
	return &Server{
		runner: runner,
		store:  store,
		opts:   opts,
		locks:  newSessionLocks(),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	if s.opts.Username != "" && s.opts.Password != "" {
		r.Use(middleware.BasicAuth("vocaltales", map[string]string{
			s.opts.Username: s.opts.Password,
		}))
	}

	r.Get("/", web.IndexHandler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/voices", s.handleVoices)
		r.Post("/turn", s.handleTurn)
		r.Post("/tell", s.handleTell)
		r.Post("/reset", s.handleReset)
	})

	r.Get("/artifacts/image", s.serveArtifact(s.opts.ImagePath))
	r.Get("/artifacts/speech", s.serveArtifact(s.opts.SpeechPath))

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Msg("HTTP request")
		}()
		next.ServeHTTP(ww, r)
	})
}
