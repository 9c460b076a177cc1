package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/portal-session-service/internal/api/http"
	"github.com/spec-kit/portal-session-service/internal/api/http/handlers"
	"github.com/spec-kit/portal-session-service/internal/auth"
	"github.com/spec-kit/portal-session-service/internal/config"
	"github.com/spec-kit/portal-session-service/internal/directory"
	"github.com/spec-kit/portal-session-service/internal/events"
	"github.com/spec-kit/portal-session-service/internal/observability"
	"github.com/spec-kit/portal-session-service/internal/persistence"
	"github.com/spec-kit/portal-session-service/internal/service"
	"github.com/spec-kit/portal-session-service/internal/session"
	"github.com/spec-kit/portal-session-service/internal/suspension"
	"github.com/spec-kit/portal-session-service/internal/timeout"
	"github.com/spec-kit/portal-session-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dir, err := directory.NewWithDemoUsers(cfg.Auth.DemoPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to build user directory", zap.Error(err))
	}

	store := buildSessionStore(cfg, pg, redis, logger)
	flags := buildFlagStore(cfg, redis, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	tracker := timeout.NewTracker(timeout.Config{
		IdleThreshold:   cfg.Timeout.IdleThreshold(),
		WarningDuration: cfg.Timeout.WarningDuration(),
		HardDeadline:    cfg.Timeout.HardDeadline(),
	}, timeout.SystemClock(), store, dispatcher, logger, cfg.Timeout.TickInterval())
	tracker.Start()
	defer tracker.Stop()

	watcher := suspension.NewWatcher(flags, dispatcher, logger, cfg.Suspension.PollInterval())
	watcher.Start()
	defer watcher.Stop()

	dispatcher.Subscribe(events.EventSessionCreated, func(context.Context, events.Event) error {
		metrics.RecordSessionEvent("created")
		return nil
	})
	dispatcher.Subscribe(events.EventSessionDestroyed, func(context.Context, events.Event) error {
		metrics.RecordSessionEvent("destroyed")
		return nil
	})
	dispatcher.Subscribe(events.EventSessionExpired, func(context.Context, events.Event) error {
		metrics.RecordSessionEvent("expired")
		return nil
	})

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Directory:  dir,
		Store:      store,
		Tracker:    tracker,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	guard := auth.NewGuard(store, tracker, cfg.Session.CookieName)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Session.CookieName, cfg.Session.TTL()),
		Session:        handlers.NewSessionHandler(tracker),
		Suspension:     handlers.NewSuspensionHandler(flags, watcher),
		Portal:         handlers.NewPortalHandler(),
		Guard:          guard,
		Flags:          flags,
		SupportContact: cfg.Suspension.SupportContact,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildSessionStore(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) session.Store {
	switch cfg.Session.Backend {
	case "postgres":
		if pg.PoolHandle() != nil {
			logger.Info("using postgres session store")
			return session.NewPostgresStore(pg.PoolHandle(), cfg.Session.TTL())
		}
		logger.Warn("postgres session backend requested without POSTGRES_DSN; falling back to memory")
	case "redis":
		logger.Info("using redis session store")
		return session.NewRedisStore(redis.Client, cfg.Session.TTL())
	}
	logger.Info("using in-memory session store")
	return session.NewMemoryStore()
}

func buildFlagStore(cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) suspension.FlagStore {
	// suspension flags follow the session backend: persistent sessions
	// get persistent flags
	if cfg.Session.Backend == "redis" {
		return suspension.NewRedisFlags(redis.Client)
	}
	return suspension.NewMemoryFlags()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
