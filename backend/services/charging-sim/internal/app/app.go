package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargesim/backend/libs/db"
	libredis "chargesim/backend/libs/redis"
	"chargesim/backend/services/charging-sim/internal/availability"
	"chargesim/backend/services/charging-sim/internal/catalog"
	"chargesim/backend/services/charging-sim/internal/config"
	"chargesim/backend/services/charging-sim/internal/events"
	httpserver "chargesim/backend/services/charging-sim/internal/http"
	"chargesim/backend/services/charging-sim/internal/http/handlers"
	"chargesim/backend/services/charging-sim/internal/http/middleware"
	"chargesim/backend/services/charging-sim/internal/metrics"
	redisstore "chargesim/backend/services/charging-sim/internal/redis"
	"chargesim/backend/services/charging-sim/internal/repository"
	"chargesim/backend/services/charging-sim/internal/service"
)

// App wires charging-sim dependencies.
type App struct {
	server      *httpserver.Server
	bus         *events.Bus
	hub         *events.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph. Redis and postgres are only dialled
// when configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger}

	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)

	a.hub = events.NewHub(logger)
	sinks := []events.Sink{a.hub, appMetrics}

	if cfg.RedisEnabled() {
		a.redisClient, err = libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, redisstore.NewStore(a.redisClient, cfg.ActiveSessionTTL()))
		logger.Info("active session mirror enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.DatabaseEnabled() {
		a.db, err = db.NewPostgresDB(ctx, cfg.Database.DSN, db.PoolOptions{})
		if err != nil {
			a.Close()
			return nil, err
		}
		repo := repository.NewSessionRepository(a.db)
		if err := repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("session journal: %w", err)
		}
		sinks = append(sinks, repo)
		logger.Info("session journal enabled")
	}

	a.bus = events.NewBus(cfg.Events.BufferSize, logger, sinks...)

	src := availability.NewSource(cfg.Simulation.Seed)
	simulator := availability.NewSimulator(src, availability.WithRecorder(appMetrics))
	registry := service.NewRegistry(src.IntN)
	engine := service.NewEngine(store, simulator, registry, logger,
		service.WithCompletionRoll(src.Float64),
		service.WithPublisher(a.bus),
		service.WithRejectionRecorder(appMetrics),
	)

	stations := handlers.NewStationsHandler(store, simulator)
	sessions := handlers.NewSessionsHandler(engine, logger)

	router := httpserver.NewRouter(httpserver.Routes{
		Health:        handlers.NewHealthHandler(),
		Metrics:       metrics.Handler(reg),
		ListStations:  stations.List,
		GetStation:    stations.Get,
		CreateSession: sessions.Create,
		ListSessions:  sessions.List,
		StartSession:  sessions.Start,
		GetSession:    sessions.Get,
		StopSession:   sessions.Stop,
		SessionFeed:   a.hub.ServeWS,
	})

	a.server = httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.LoggingMiddleware(logger, appMetrics),
		middleware.RecoveryMiddleware(logger),
		middleware.CORSMiddleware(cfg.HTTP.CORSOrigins),
		middleware.AuthMiddleware(middleware.AuthOptions{
			Token:       cfg.Auth.Token,
			TokenHash:   cfg.Auth.TokenHash,
			ExemptPaths: cfg.Auth.ExemptPaths,
		}, logger),
	)

	logger.Info("catalog loaded", zap.Int("stations", len(store.Stations())))
	return a, nil
}

// Handler exposes the wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves HTTP and delivers events until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	busCtx, stopBus := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.bus.Run(busCtx)
	}()

	err := a.server.Run(ctx)

	stopBus()
	wg.Wait()
	a.hub.Close()
	return err
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
