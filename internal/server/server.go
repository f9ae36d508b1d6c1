// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer, the composition root: it connects
// the database, services, handlers, and middleware in one place. main.go
// stays minimal (read config, start the server), and tests can build a
// full server without running main.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/socialhub/internal/auth"
	"github.com/sakif/socialhub/internal/handler"
	"github.com/sakif/socialhub/internal/middleware"
	sqliteRepo "github.com/sakif/socialhub/internal/repository/sqlite"
	"github.com/sakif/socialhub/internal/service"
	"github.com/sakif/socialhub/internal/upload"
)

// Config holds server configuration. A struct (instead of individual
// parameters) keeps signatures stable as options are added and lets
// main.go load everything from the environment in one place.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	UploadDir string
	StaticDir string // optional: built frontend to serve at /; empty disables it
}

// Server owns the router and the resources that must be released on
// shutdown (the database connection). Start() closes them after the
// graceful drain.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repository stores → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services. Nothing below the handler layer
// touches HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, wires the services, and registers
// every route.
//
// Middleware order matters: RequestID first so the logger can include
// it, Recoverer before our handlers so panics become 500s.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	uploads, err := upload.NewStore(s.config.UploadDir)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}

	authService := service.NewAuthService(s.db.UserStore(), tokens, passwords, s.logger)
	userService := service.NewUserService(s.db.UserStore(), s.db.FollowStore(), s.logger)
	postService := service.NewPostService(s.db.PostStore(), s.db.CommentStore(), s.logger)
	commentService := service.NewCommentService(s.db.CommentStore(), s.db.PostStore(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, uploads, s.logger)
	postHandler := handler.NewPostHandler(postService, uploads, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)

	// Uploaded images are public once stored; no auth on reads.
	fileServer := http.FileServer(http.Dir(uploads.Dir()))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.HandleMe)

			// Literal segments before {id} so "following" and
			// "user" aren't swallowed by the wildcard.
			r.Get("/posts", postHandler.HandleFeed)
			r.Get("/posts/following", postHandler.HandleFollowingFeed)
			r.Get("/posts/user/{userId}", postHandler.HandleUserPosts)
			r.Post("/posts", postHandler.HandleCreate)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Post("/posts/{id}/like", postHandler.HandleLike)

			r.Get("/comments/{postId}", commentHandler.HandleList)
			r.Post("/comments/{postId}", commentHandler.HandleCreate)
			r.Put("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)
			r.Post("/comments/{id}/like", commentHandler.HandleLike)

			r.Get("/users/search/users", userHandler.HandleSearch)
			r.Get("/users/{id}", userHandler.HandleGetProfile)
			r.Put("/users/profile", userHandler.HandleUpdateProfile)
			r.Delete("/users/profile", userHandler.HandleDeleteAccount)
			r.Post("/users/{id}/follow", userHandler.HandleFollow)
			r.Post("/users/{id}/unfollow", userHandler.HandleUnfollow)
			r.Get("/users/{id}/followers", userHandler.HandleFollowers)
			r.Get("/users/{id}/following", userHandler.HandleFollowing)
		})
	})

	if s.config.StaticDir != "" {
		static := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/*", static)
	}

	return nil
}

// Router exposes the configured handler, mainly for httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s
// to finish, close the database (flushes the WAL, releases the lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
