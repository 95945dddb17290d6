// Package main is the entrypoint for the Curt API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/auth"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/config"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/geoip"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/handler"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/metrics"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/middleware"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/repository"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/server"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.MongoURL)),
			slog.String("mongo_url", redactURL(cfg.MongoURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "database", cfg.MongoDatabase)

	geoClient := geoip.New(cfg.GeoIPBaseURL, cfg.GeoIPTimeout)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	metricsRecorder := metrics.NewNoop()

	linkService := service.NewLinkService(service.LinkServiceConfig{
		Store:     repo,
		Geo:       geoClient,
		Logger:    logger,
		Metrics:   metricsRecorder,
		BaseURL:   cfg.BaseURL,
		QREnabled: cfg.QREnabled,
		QRSize:    cfg.QRSize,
	})
	authService := service.NewAuthService(repo, tokens, cfg.BcryptCost, logger, metricsRecorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	linkHandler := handler.NewLinkHandler(linkService, logger)
	redirectHandler := handler.NewRedirectHandler(linkService, logger, metricsRecorder)

	r := setupRouter(h, healthHandler, authHandler, linkHandler, redirectHandler, tokens, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("mongodb", repo.Close)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	linkHandler *handler.LinkHandler,
	redirectHandler *handler.RedirectHandler,
	tokens *auth.TokenIssuer,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Authentication
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
	}

	// Link management (requires a valid JWT)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Post("/", linkHandler.Create)
		r.Get("/", linkHandler.List)
		r.Get("/analytics/{id}", linkHandler.Analytics)
		r.Delete("/{id}", linkHandler.Delete)
	})

	// Public redirect (no auth required)
	r.Get("/{shortCode}", redirectHandler.Redirect)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
