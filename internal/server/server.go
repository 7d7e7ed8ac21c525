package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/freefinder/apiserver/config"
	"github.com/freefinder/apiserver/internal/auth"
	"github.com/freefinder/apiserver/internal/db"
	"github.com/freefinder/apiserver/internal/handlers"
	"github.com/freefinder/apiserver/internal/mail"
	"github.com/freefinder/apiserver/internal/services"
	"github.com/freefinder/apiserver/internal/storage"
	"github.com/freefinder/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server: it opens the database handle, wires the
// repositories, services, and collaborators, and registers all routes.
// The database connection lives for the life of the server and is
// closed by Shutdown.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.Auth.SessionSecret == "" || cfg.Auth.EmailSecret == "" {
		return nil, errors.New("TOKEN_SECRET and EMAIL_SECRET are required")
	}
	if cfg.Auth.SessionSecret == cfg.Auth.EmailSecret {
		return nil, errors.New("TOKEN_SECRET and EMAIL_SECRET must differ")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	listingRepo := store.NewListingRepository(dbConn)
	reviewRepo := store.NewReviewRepository(dbConn)

	userService := services.NewUserService(userRepo, listingRepo)
	listingService := services.NewListingService(listingRepo)
	reviewService := services.NewReviewService(reviewRepo, userRepo)

	tokens := auth.NewTokenService(cfg.Auth)

	mailer, err := newMailer(cfg.Mail)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objectStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	requireAuth := handlers.RequireAuth(tokens)
	attachIdentity := handlers.AttachIdentity(tokens)
	rateLimit := handlers.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	authHandler := handlers.NewAuthHandler(userService, tokens, mailer, cfg.FrontendURL)
	listingHandler := handlers.NewListingHandler(listingService)
	userHandler := handlers.NewUserHandler(userService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	uploadHandler := handlers.NewUploadHandler(objectStorage)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, authHandler, rateLimit)
	handlers.ListingRouter(router, listingHandler, requireAuth, attachIdentity)
	handlers.UserRouter(router, userHandler, requireAuth, attachIdentity)
	handlers.ReviewRouter(router, reviewHandler, requireAuth)
	router.Route("/api", func(r chi.Router) {
		handlers.UploadRouter(r, uploadHandler, requireAuth)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8000
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
		db:         dbConn,
	}, nil
}

func newMailer(cfg config.MailConfig) (*mail.Mailer, error) {
	switch cfg.Provider {
	case "sendgrid":
		backend, err := mail.NewSendGridClient(cfg)
		if err != nil {
			return nil, err
		}
		return mail.New(backend), nil
	case "log":
		return mail.New(mail.NewLogClient()), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
