// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/projectboard/internal/admin"
	"github.com/carterperez-dev/projectboard/internal/auth"
	"github.com/carterperez-dev/projectboard/internal/capability"
	"github.com/carterperez-dev/projectboard/internal/config"
	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/health"
	"github.com/carterperez-dev/projectboard/internal/identity"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
	"github.com/carterperez-dev/projectboard/internal/project"
	"github.com/carterperez-dev/projectboard/internal/server"
	"github.com/carterperez-dev/projectboard/internal/task"
	"github.com/carterperez-dev/projectboard/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before config")
	flag.Parse()

	if err := loadEnvFile(*envFile); err != nil {
		slog.Error("env file", "error", err)
		os.Exit(1)
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadEnvFile reads path into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"auth_mode", cfg.Auth.Mode,
		"visibility", cfg.Visibility(),
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	var verifier *auth.JWTManager
	if cfg.Auth.Mode == config.AuthModeJWT {
		verifier, err = auth.NewVerifier(cfg.JWT)
		if err != nil {
			return err
		}
		logger.Info("JWT verifier initialized",
			"algorithm", "ES256",
			"key_id", verifier.GetKeyID(),
		)
	}

	var tokens identity.TokenVerifier
	if verifier != nil {
		tokens = verifier
	}
	resolver, err := identity.New(cfg.Auth, tokens, logger)
	if err != nil {
		return err
	}

	accessPolicy := policy.New(cfg.Visibility())
	denier := middleware.NewDenier(cfg.Policy.DashboardPath, logger)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc, denier)

	projectRepo := project.NewRepository(db.DB)
	projectSvc := project.NewService(projectRepo, userSvc, accessPolicy)
	projectHandler := project.NewHandler(projectSvc, denier)

	taskRepo := task.NewRepository(db.DB)
	taskSvc := task.NewService(taskRepo, projectSvc, userSvc)
	taskHandler := task.NewHandler(taskSvc, denier)

	capabilityHandler := capability.NewHandler(accessPolicy, cfg.Policy.DashboardPath)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.DB.Stats,
		RedisStats: redis.Client.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Policy:     accessPolicy,
		Denier:     denier,
	})

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if verifier != nil {
		router.Get("/.well-known/jwks.json", verifier.GetJWKSHandler())
	}

	authenticator := middleware.Authenticator(resolver)
	limiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc: middleware.KeyByActor,
		Logger:  logger,
	})

	router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(resolver))
		r.Use(limiter.Handler)

		capabilityHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		projectHandler.RegisterRoutes(r, authenticator, taskHandler.Routes)
		adminHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
