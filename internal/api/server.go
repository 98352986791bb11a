package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/veldt-labs/tubescribe/internal/config"
	"github.com/veldt-labs/tubescribe/internal/metrics"
	"github.com/veldt-labs/tubescribe/internal/pipeline"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewServer(cfg *config.Config, pl *pipeline.Pipeline, version string, startTime time.Time, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(CORS)
	r.Use(metrics.InstrumentHandler)

	h := NewHandler(pl)
	health := NewHealthHandler(pl.Artifacts(), version, startTime)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.ServeHTTP)
		r.Post("/extract", h.Extract)
		r.Post("/transcribe", h.Transcribe)
		r.Get("/status/{jobID}", h.Status)
		r.Get("/jobs", h.ListJobs)
		r.Get("/audio/{videoID}", h.Audio)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
