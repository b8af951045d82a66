package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"storefront/internal/adapter/backend"
	"storefront/internal/adapter/file"
	adapthttp "storefront/internal/adapter/http"
	"storefront/internal/adapter/memory"
	"storefront/internal/adapter/postgres"
	"storefront/internal/adapter/redis"
	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/telemetry"
)

const serviceName = "storefront"

func main() {
	configPath := flag.String("config", "", "config file (default ./storefront.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var traceOut io.Writer
	if cfg.TraceStdout {
		traceOut = os.Stdout
	}
	shutdownTracing, err := telemetry.Setup(serviceName, traceOut)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tr := backend.NewTransport(telemetry.Transport(nil), cfg.BaseURL, nil, log.With().Str("component", "backend").Logger())
	client := backend.New(cfg.BaseURL, tr)

	sess := app.NewSessionService(store, client, client, log)
	tr.Bind(sess)
	cart := app.NewCartService(store, log)
	if err := sess.Restore(ctx); err != nil {
		return err
	}
	if err := cart.Restore(ctx); err != nil {
		return err
	}

	api := adapthttp.New(adapthttp.Services{
		Session:   sess,
		Cart:      cart,
		Catalog:   app.NewCatalogService(client, sess),
		Orders:    app.NewOrderService(client, sess),
		Users:     app.NewUserService(client, sess),
		Dashboard: app.NewDashboardService(client, client, client, sess),
		Checkout:  app.NewCheckoutService(cart, sess),
	}, cfg.WebDir, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           telemetry.Handler(api.Handler(), serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.BaseURL).Str("store", cfg.Store).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (domain.Store, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), noop, nil
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL, serviceName)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres store: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	case config.StoreRedis:
		rs, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPrefix,
			redis.WithPassword(cfg.RedisPassword), redis.WithDB(cfg.RedisDB))
		if err != nil {
			return nil, noop, fmt.Errorf("open redis store: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		var opts []file.Option
		if cfg.StoreKey != "" {
			opts = append(opts, file.WithKey(cfg.StoreKey))
		}
		fs, err := file.Open(cfg.StorePath, opts...)
		if err != nil {
			return nil, noop, fmt.Errorf("open file store: %w", err)
		}
		return fs, noop, nil
	}
}
