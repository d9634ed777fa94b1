package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/CleytonSeles/play-fullstack/internal/auth"
	"github.com/CleytonSeles/play-fullstack/internal/events"
	"github.com/CleytonSeles/play-fullstack/internal/playlist"
	"github.com/CleytonSeles/play-fullstack/internal/realtime"
)

// app owns every long-lived dependency of the service.
type app struct {
	cfg Config
	log *log.Logger

	pool *pgxpool.Pool
	rdb  *redis.Client

	codec     *auth.TokenCodec
	verifier  *auth.Verifier
	playlists *playlist.Service
	videos    *playlist.VideoService
	hub       *realtime.Hub
	metrics   *metrics
}

// newApp wires storage, events and services from cfg. Without DATABASE_URL
// the stores live in memory; without REDIS_URL events go straight to the
// websocket hub.
func newApp(ctx context.Context, cfg Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger, metrics: newMetrics()}

	if cfg.Token.UsesInsecureDefault() {
		logger.Warn("JWT_SECRET is not set, using the insecure default secret; do not run this in production")
	}
	a.codec = auth.NewTokenCodec(cfg.Token)

	var (
		users     auth.Repository
		store     playlist.Store
		videos    playlist.VideoStore
		publisher events.Publisher
	)

	if cfg.DatabaseURL != "" {
		pool, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		if err := migrate(ctx, pool); err != nil {
			a.Close()
			return nil, err
		}
		pg := playlist.NewPostgresStore(pool)
		users, store, videos = auth.NewPostgresRepository(pool), pg, pg
		logger.Info("storage", "driver", "postgres")
	} else {
		mem := playlist.NewMemoryStore()
		users, store, videos = auth.NewMemoryRepository(), mem, mem
		logger.Warn("DATABASE_URL is not set, data is kept in memory only")
	}

	a.hub = realtime.NewHub(logger)
	publisher = a.hub

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("watchplay: invalid REDIS_URL: %w", err)
		}
		a.rdb = redis.NewClient(opt)
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; publishes are lost and the relay retries until it connects", "err", err)
		}
		publisher = events.NewRedisPublisher(a.rdb, cfg.EventsChannel, logger)
	}
	publisher = events.Fanout{publisher, a.metrics}

	a.verifier = auth.NewVerifier(users, auth.BcryptHasher{Cost: cfg.BcryptCost}, a.codec, logger)
	a.playlists = playlist.NewService(store, publisher, logger)
	a.videos = playlist.NewVideoService(a.playlists, videos, publisher, logger)
	return a, nil
}

// run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *app) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hub.Run(ctx)
	if a.rdb != nil {
		go a.hub.Relay(ctx, a.rdb, a.cfg.EventsChannel)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("watchplay: connect postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("watchplay: ping postgres: %w", err)
	}
	return pool, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := auth.AutoMigrate(ctx, pool); err != nil {
		return fmt.Errorf("watchplay: migrate users: %w", err)
	}
	if err := playlist.AutoMigrate(ctx, pool); err != nil {
		return fmt.Errorf("watchplay: migrate playlists: %w", err)
	}
	return nil
}
