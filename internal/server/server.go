// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kinship-dev/kinship/internal/query"
	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
	"github.com/kinship-dev/kinship/pkg/health"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Locale       string
	Auth         AuthConfig
}

// Server wraps a chi router with a huma API over one store and query engine.
type Server struct {
	router chi.Router
	api    huma.API
	cfg    Config
	st     store.EntityStore
	engine *query.Engine
}

// New creates a Server with chi router, huma API, health endpoint, CORS, and
// all entity routes registered.
func New(cfg Config, st store.EntityStore, engine *query.Engine) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, kinerr.New(kinerr.CodeConfigValidateInvalidValue, "listen address is required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 15 * time.Minute
	}
	if cfg.Auth.RefreshTTL == 0 {
		cfg.Auth.RefreshTTL = 7 * 24 * time.Hour
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(authMiddleware(cfg.Auth))

	humaConfig := huma.DefaultConfig("Kinship", "0.1.0")
	humaConfig.Info.Description = "Genealogical tree query API"
	api := humachi.New(r, humaConfig)

	// Health endpoint
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: health.Check(ctx, storeProbe{st})}, nil
	})

	srv := &Server{
		router: r,
		api:    api,
		cfg:    cfg,
		st:     st,
		engine: engine,
	}
	srv.registerTokenRoutes()
	srv.registerRoutes()
	return srv, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API for registering additional operations.
func (s *Server) API() huma.API {
	return s.api
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return kinerr.Wrapf(err, kinerr.CodeServerStartFailure, "listening on %s", s.cfg.ListenAddr)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return kinerr.Wrap(err, kinerr.CodeServerShutdownFailure, "shutting down")
	}

	return <-errCh
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body health.Status
}

// storeProbe adapts the store summary to the health probe's shape.
type storeProbe struct {
	st store.EntityStore
}

func (p storeProbe) Summary(ctx context.Context) (map[string]int, error) {
	summary, err := p.st.Summary(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(summary.Counts))
	for kind, n := range summary.Counts {
		counts[string(kind)] = n
	}
	return counts, nil
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
