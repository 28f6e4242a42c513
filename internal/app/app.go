package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/studyhub-backend/internal/data/db"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/http"
	httpMW "github.com/yungbote/studyhub-backend/internal/http/middleware"
	"github.com/yungbote/studyhub-backend/internal/observability"
	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
	"github.com/yungbote/studyhub-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Registry *generation.Registry
	Server   *http.Server

	pg           *db.PostgresService
	bus          bus.Bus
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown, err := observability.Setup(context.Background(), log,
		observability.TracingConfigFromEnv(cfg.ServiceName, cfg.Environment, cfg.Version))
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}

	pg, err := db.NewPostgresService(log, db.PostgresConfigFromEnv())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	a := &App{Log: log, DB: theDB, Cfg: cfg, pg: pg, otelShutdown: otelShutdown}
	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	log, cfg := a.Log, a.Cfg

	a.SSEHub = realtime.NewSSEHub(log)
	var pub realtime.Publisher
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(log, bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return fmt.Errorf("init redis bus: %w", err)
		}
		a.bus = b
		pub = b
	} else {
		log.Warn("REDIS_ADDR not set; realtime updates stay on this instance")
	}
	notifier := realtime.NewNotifier(log, a.SSEHub, pub)

	a.Registry = generation.NewRegistry(log, cfg.SessionIdleTTL)
	a.Repos = wireRepos(a.DB, log)

	clients, err := wireClients(log, cfg)
	if err != nil {
		return err
	}
	a.Services, err = wireServices(log, cfg, a.Repos, clients, a.Registry, notifier)
	if err != nil {
		return err
	}

	auth, err := httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
		Secret: cfg.AuthJWTSecret,
		Issuer: cfg.AuthJWTIssuer,
	})
	if err != nil {
		return fmt.Errorf("init auth middleware: %w", err)
	}
	h := wireHandlers(log, a.DB, a.Services, a.SSEHub)
	a.Server = http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  auth,
		HealthHandler:   h.Health,
		SubjectHandler:  h.Subject,
		LectureHandler:  h.Lecture,
		FileHandler:     h.File,
		ArtifactHandler: h.Artifact,
		AccountHandler:  h.Account,
		BillingHandler:  h.Billing,
		RealtimeHandler: h.Realtime,
	})
	a.Server.OnShutdown(a.SSEHub.CloseAll)
	return nil
}

// Start runs the background loops: the idle session sweeper and the redis forwarder.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Registry.Start(ctx)
	if a.bus != nil {
		if err := a.bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start redis forwarder: %w", err)
		}
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Shutdown drains HTTP traffic, then releases everything Close does.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var err error
	if a.Server != nil {
		err = a.Server.Shutdown(ctx)
	}
	a.Close()
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Registry != nil {
		a.Registry.CloseAll()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.Log.Warn("redis bus close failed", "error", err)
		}
		a.bus = nil
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
		a.pg = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
