package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/db"
	"github.com/yungbote/educator-assistant-backend/internal/http"
	"github.com/yungbote/educator-assistant-backend/internal/observability"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

const stateSweepInterval = time.Minute

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Server    *http.Server
	Cfg       Config
	Repos     Repos
	Services  Services
	Clients   Clients
	Assistant Assistant

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects and migrates the schema.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.Open(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return svc, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Environment: cfg.Env,
		SampleRatio: cfg.OTelSampleRatio,
	})

	dbService, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)
	asst, err := wireAssistant(log, cfg, reposet, serviceset, clients)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset, asst)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Assistant:    asst,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the in-memory state sweeper.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if a.Assistant.Memory != nil {
		go a.Assistant.Memory.RunSweeper(ctx, stateSweepInterval)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr(), "debug", a.Cfg.Debug)
	return a.Server.Run(ctx, a.Cfg.Addr(), a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
