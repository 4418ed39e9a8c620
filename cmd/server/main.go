package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tripmate-route-service/internal/adapters/cache"
	"tripmate-route-service/internal/adapters/events"
	"tripmate-route-service/internal/adapters/maps"
	"tripmate-route-service/internal/adapters/repositories"
	"tripmate-route-service/internal/api"
	"tripmate-route-service/internal/config"
	"tripmate-route-service/internal/platform/db"
	"tripmate-route-service/internal/platform/metrics"
	"tripmate-route-service/internal/platform/obs"
	"tripmate-route-service/internal/ports"
	"tripmate-route-service/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, maps provider, cache, events) behind
// ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.AppEnv, "tripmate-route-service")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return err
	}

	provider, err := newMapsProvider(cfg.Maps, log, rec)
	if err != nil {
		return err
	}

	mode, ok := ports.ParseTravelMode(cfg.Maps.TravelMode)
	if !ok {
		return fmt.Errorf("unsupported travel mode %q", cfg.Maps.TravelMode)
	}

	placeCache, closeCache, err := newPlaceCache(ctx, cfg.Redis, conn, log)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher, closePublisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	repo := repositories.NewPostgresTripRepository(conn, log)
	optimizer := services.NewRouteOptimizer(provider, mode, log, rec)
	trips := services.NewTripRouteService(repo, optimizer, publisher, cfg.Maps.Timeout, log)
	places := services.NewPlaceService(provider, placeCache, cfg.Maps.Timeout, log)

	router := api.NewRouter(api.Deps{
		Trips:    trips,
		Places:   places,
		Log:      log,
		Metrics:  rec,
		Gatherer: reg,
	})

	// Provider calls, retries included, share one MAPS_TIMEOUT deadline per
	// request; the write timeout adds headroom for the database work.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Maps.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("maps_provider", cfg.Maps.Provider),
			zap.String("travel_mode", string(mode)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newMapsProvider(cfg config.MapsConfig, log *zap.Logger, rec *metrics.Recorder) (ports.MapsProvider, error) {
	switch cfg.Provider {
	case config.ProviderOffline:
		return maps.NewOfflineProvider(cfg.OfflineSpeedKmh, log, rec)
	default:
		return maps.NewGoogleMapsProvider(maps.GoogleConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			MaxAttempts: cfg.MaxAttempts,
			Timeout:     cfg.Timeout,
		}, log, rec)
	}
}

// newPlaceCache prefers Redis and falls back to the place_cache table.
func newPlaceCache(ctx context.Context, cfg config.RedisConfig, conn *sql.DB, log *zap.Logger) (ports.PlaceCache, func(), error) {
	if cfg.Addr == "" {
		log.Info("place cache backend", zap.String("backend", "postgres"))
		return cache.NewSQLPlaceCache(conn, cfg.TTL, log), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	log.Info("place cache backend", zap.String("backend", "redis"), zap.String("addr", cfg.Addr))
	return cache.NewRedisPlaceCache(client, cfg.TTL, log), func() { _ = client.Close() }, nil
}

func newPublisher(cfg config.KafkaConfig, log *zap.Logger) (ports.EventPublisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Info("event publishing disabled")
		return events.NopPublisher{}, func() {}, nil
	}

	p, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic, log)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("close kafka publisher", zap.Error(err))
		}
	}, nil
}
