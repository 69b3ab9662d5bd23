package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjudge-oj/userauth/config"
	"github.com/jjudge-oj/userauth/internal/auth"
	"github.com/jjudge-oj/userauth/internal/handlers"
	"github.com/jjudge-oj/userauth/internal/logging"
	"github.com/jjudge-oj/userauth/internal/mq"
	"github.com/jjudge-oj/userauth/internal/services"
	"github.com/jjudge-oj/userauth/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      store.UserStore
	events     *mq.MQ
	logger     *slog.Logger
}

// New connects the store and event publisher and wires the user routes.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	hasher, err := auth.NewHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	userStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := userStore.Migrate(ctx); err != nil {
		_ = userStore.Close(ctx)
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	events, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = userStore.Close(ctx)
		return nil, err
	}

	userService := services.NewUserService(
		userStore,
		hasher,
		issuer,
		mq.NewUserEvents(events, cfg.MQ.EventChannel),
	)

	router := NewRouter(logger, userService, issuer, userStore)

	port := cfg.ServerPort
	if port == 0 {
		port = config.DefaultServerPort
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		store:      userStore,
		events:     events,
		logger:     logger,
	}, nil
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(logger *slog.Logger, userService *services.UserService, tokens handlers.TokenVerifier, ready handlers.Pinger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Get("/readyz", handlers.Readyz(ready))
	router.Route("/api/users", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokens)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the store and the
// event publisher.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close events: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
