// Package server is the composition root: it builds services and handlers
// from their dependencies, mounts them on a chi router and runs the HTTP
// server with graceful shutdown.
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config → sqlstore.DB, storage.ImageStore (optional), GitHub provider (optional)
//
// Server.New creates:
//
//	TokenService → IdentityResolver → AuthService / BoardService / CollegeService → handlers
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/config"
	"github.com/sakif/college-board/internal/handler"
	"github.com/sakif/college-board/internal/middleware"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository/sqlstore"
	"github.com/sakif/college-board/internal/service"
	"github.com/sakif/college-board/internal/storage"
)

const shutdownTimeout = 30 * time.Second

// Deps are the externally constructed resources the server needs. Images
// and GitHub may be nil; the corresponding features are then disabled.
type Deps struct {
	Store  *sqlstore.DB
	Images storage.ImageStore
	GitHub handler.GitHubExchanger
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store and closes it after the HTTP server has drained.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  *sqlstore.DB
}

// New wires every layer and registers the routes.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server: store is required")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  deps.Store,
	}
	s.setupRoutes(tokens, deps)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                                      → liveness
//	POST   /auth/register | /auth/login | /auth/logout
//	GET    /auth/github/login | /auth/github/callback   (when configured)
//	GET    /api/me
//	GET    /api/users                             → ROLE_ADMIN only
//	GET    /api/boards            POST /api/boards
//	GET    /api/boards/{boardID}  PUT | DELETE
//	POST   /api/boards/{boardID}/comments
//	PUT    /api/boards/{boardID}/comments/{commentID}  DELETE
//	POST   /api/boards/{boardID}/likes   DELETE
//	POST   /api/boards/{boardID}/scraps  DELETE
//	GET    /api/{volunteers,clubs,studies}  POST  GET /{id}
//
// MIDDLEWARE ORDER:
// RequestID → RealIP → Recoverer → Logger globally; the rate limiter on
// /auth; RequireAuth on /api.
func (s *Server) setupRoutes(tokens *auth.TokenService, deps Deps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordServiceWithCost(s.config.BcryptCost)
	identities := service.NewIdentityResolver(deps.Store)

	accounts := service.NewAuthService(deps.Store, tokens, passwords, s.config.AccessTokenTTL, s.logger)
	boards := service.NewBoardService(deps.Store, s.logger)
	college := service.NewCollegeService(deps.Store, deps.Images, s.logger)

	authHandler := handler.NewAuthHandler(accounts, deps.GitHub, s.config.AccessTokenTTL, s.logger)
	boardHandler := handler.NewBoardHandler(boards, s.logger)
	collegeHandler := handler.NewCollegeHandler(college, s.config.MaxUploadSize, s.logger)

	s.router.Get("/", handler.HandleHello)

	limiter := middleware.NewRateLimiter(s.config.AuthRateLimit, s.config.AuthRateBurst)
	s.router.Route("/auth", func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		if authHandler.GitHubEnabled() {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		} else {
			s.logger.Info("GitHub OAuth not configured, /auth/github routes disabled")
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, identities, s.logger))

		r.Get("/me", authHandler.HandleMe)
		r.With(auth.RequireRole(model.RoleAdmin, s.logger)).Get("/users", authHandler.HandleListUsers)

		r.Route("/boards", func(r chi.Router) {
			r.Get("/", boardHandler.HandleList)
			r.Post("/", boardHandler.HandleCreate)

			r.Route("/{boardID}", func(r chi.Router) {
				r.Get("/", boardHandler.HandleGet)
				r.Put("/", boardHandler.HandleUpdate)
				r.Delete("/", boardHandler.HandleDelete)

				r.Post("/comments", boardHandler.HandleCreateComment)
				r.Put("/comments/{commentID}", boardHandler.HandleUpdateComment)
				r.Delete("/comments/{commentID}", boardHandler.HandleDeleteComment)

				r.Post("/likes", boardHandler.HandleLike)
				r.Delete("/likes", boardHandler.HandleUnlike)
				r.Post("/scraps", boardHandler.HandleScrap)
				r.Delete("/scraps", boardHandler.HandleUnscrap)
			})
		})

		r.Get("/volunteers", collegeHandler.HandleListVolunteers)
		r.Post("/volunteers", collegeHandler.HandleCreateVolunteer)
		r.Get("/volunteers/{id}", collegeHandler.HandleGetVolunteer)

		r.Get("/clubs", collegeHandler.HandleListClubs)
		r.Post("/clubs", collegeHandler.HandleCreateClub)
		r.Get("/clubs/{id}", collegeHandler.HandleGetClub)

		r.Get("/studies", collegeHandler.HandleListStudies)
		r.Post("/studies", collegeHandler.HandleCreateStudy)
		r.Get("/studies/{id}", collegeHandler.HandleGetStudy)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("driver", s.config.DB.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
