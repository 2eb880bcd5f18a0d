// Package server wires the application together and runs the HTTP server.
//
// The dependency chain is built once in New:
//
//	config → sqlite.DB → services → handlers → chi router
//
// Nothing below the server package knows how its collaborators are built.
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
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/auth"
	"github.com/Ly-yang/wechat-editor/internal/config"
	"github.com/Ly-yang/wechat-editor/internal/handler"
	"github.com/Ly-yang/wechat-editor/internal/middleware"
	sqliteRepo "github.com/Ly-yang/wechat-editor/internal/repository/sqlite"
	"github.com/Ly-yang/wechat-editor/internal/service"
	"github.com/Ly-yang/wechat-editor/internal/storage"
)

// uploadsPrefix is both the URL path and the public path prefix of stored
// files: "uploads/abc.png" is served at "/uploads/abc.png".
const uploadsPrefix = "uploads"

// Server holds the router and the resources it owns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph on top of an open database. The
// server takes ownership of db and closes it when Start returns.
func New(cfg *config.Config, db *sqliteRepo.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Router exposes the configured router for route docs and tests.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	disk, err := storage.NewDisk(s.config.UploadDir, uploadsPrefix)
	if err != nil {
		return err
	}

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		callback := s.config.GitHubCallbackURL
		if callback == "" {
			callback = fmt.Sprintf("http://localhost:%d/api/auth/github/callback", s.config.Port)
		}
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, callback)
	}

	// Services
	renderSvc := service.NewRenderService(s.db, s.logger)
	authSvc := service.NewAuthService(s.db, tokens, passwords, s.logger)
	articleSvc := service.NewArticleService(s.db, renderSvc, s.logger)
	materialSvc := service.NewMaterialService(s.db, disk, s.config.MaxUploadBytes(), s.logger)
	templateSvc := service.NewTemplateService(s.db, s.logger)
	suggestionSvc := service.NewSuggestionService(s.db, s.db, s.logger)
	statsSvc := service.NewStatsService(s.db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := templateSvc.EnsureSystemTemplates(ctx); err != nil {
		return err
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, github, s.logger)
	articleHandler := handler.NewArticleHandler(articleSvc, s.logger)
	materialHandler := handler.NewMaterialHandler(materialSvc, s.config.MaxUploadBytes(), s.logger)
	templateHandler := handler.NewTemplateHandler(templateSvc, renderSvc, s.logger)
	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc, s.logger)
	statsHandler := handler.NewStatsHandler(statsSvc, s.db, s.logger)

	authLimiter := middleware.NewRateLimiter(s.config.AuthRatePerMinute, s.config.AuthRateBurst)
	rejectRateLimited := func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, s.logger, apperror.RateLimited())
	}

	// Global middleware, outermost first.
	s.router.Use(chimiddleware.RequestID)
	if s.config.TrustProxy {
		s.router.Use(chimiddleware.RealIP)
	}
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, s.logger, &apperror.AppError{Err: apperror.ErrNotFound, Message: "route not found"})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, handler.ErrorResponse{Error: "method not allowed", Code: "method_not_allowed"})
	})

	// Stored files are served by exact name; the directory is never listed.
	fileServer := http.FileServer(filesOnly{http.Dir(disk.Dir())})
	s.router.Handle("/"+uploadsPrefix+"/*", http.StripPrefix("/"+uploadsPrefix+"/", fileServer))

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", statsHandler.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Handler(rejectRateLimited))
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			if authHandler.GitHubEnabled() {
				r.Get("/github/login", authHandler.HandleGitHubLogin)
				r.Get("/github/callback", authHandler.HandleGitHubCallback)
			}
		})

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/user/profile", authHandler.HandleProfile)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", articleHandler.HandleList)
				r.Post("/", articleHandler.HandleCreate)
				r.Get("/{id}", articleHandler.HandleGet)
				r.Put("/{id}", articleHandler.HandleUpdate)
				r.Delete("/{id}", articleHandler.HandleDelete)
				r.Get("/{id}/export/{format}", articleHandler.HandleExport)
			})

			r.Post("/upload", materialHandler.HandleUpload)
			r.Get("/materials", materialHandler.HandleList)

			r.Post("/ai/suggestions", suggestionHandler.HandleSuggest)
			r.Post("/ai/suggestions/{id}/apply", suggestionHandler.HandleApply)

			r.Get("/templates", templateHandler.HandleList)
			r.Post("/templates", templateHandler.HandleCreate)
			r.Post("/render", templateHandler.HandleRender)

			r.Get("/stats", statsHandler.HandleStats)
		})
	})

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
			slog.Bool("github", s.config.GitHubEnabled()),
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// filesOnly hides directories from http.FileServer: opening one reports
// os.ErrNotExist, so the server answers 404 instead of an index page.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
