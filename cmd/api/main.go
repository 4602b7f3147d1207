package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"library3d/internal/asset"
	"library3d/internal/auth"
	"library3d/internal/catalog"
	"library3d/internal/config"
	"library3d/internal/platform/assets"
	"library3d/internal/platform/logging"
	"library3d/internal/platform/metrics"
	"library3d/internal/platform/objectstore"
	"library3d/internal/preload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	rt := routes{JWTSecret: cfg.HTTP.JWTSecret, Metrics: m.Handler()}

	provider, closeDB, err := openProvider(ctx, cfg.Catalog, logger)
	if err != nil {
		return err
	}
	defer closeDB()
	if pg, ok := provider.(*catalog.PostgresProvider); ok {
		rt.Ready = pg.Ping
	}

	svc, err := catalog.NewService(provider, cfg.Catalog.CacheSize,
		catalog.WithQueryCounter(m.CatalogQueries, cfg.Catalog.Source))
	if err != nil {
		return err
	}
	rt.Catalog = catalog.NewHTTPHandler(svc, logger)

	var store asset.Store
	if cfg.S3.Endpoint != "" {
		s, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:   cfg.S3.Endpoint,
			AccessKey:  cfg.S3.AccessKey,
			SecretKey:  cfg.S3.SecretKey,
			Bucket:     cfg.S3.Bucket,
			PresignTTL: cfg.S3.PresignTTL,
		})
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		store = s
		rt.Assets = asset.NewHTTPHandler(store, svc, logger)
		logger.WithField("bucket", cfg.S3.Bucket).Info("asset signing enabled")
	}

	resolver := modelResolver(cfg, store)
	if resolver != nil {
		warmer, err := assets.NewWarmer(ctx, cfg.Preload.WarmEntries, cfg.Preload.WarmMaxBytes, logger)
		if err != nil {
			return err
		}
		defer warmer.Wait()

		cache := preload.New(resolver, warmer,
			preload.WithTTL(cfg.Preload.TTL),
			preload.WithDefaultDelay(cfg.Preload.Delay),
			preload.WithLogger(logger),
			preload.WithOutcomeCounter(m.PreloadOutcomes),
			preload.WithBaseContext(ctx),
		)
		defer cache.Close()
		rt.Preload = preload.NewHTTPHandler(cache, warmer)
	} else {
		logger.Warn("no model source configured; preload routes disabled")
	}

	handler, err := withMiddleware(newRouter(rt), cfg.HTTP, logger, m)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.Addr, "catalog_source": cfg.Catalog.Source}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// modelResolver prefers the asset API and falls back to signing models
// directly from the object store. It returns nil when neither is configured.
func modelResolver(cfg *config.Config, store asset.Store) preload.Resolver {
	if cfg.Assets.BaseURL != "" {
		var opts []assets.ClientOption
		switch {
		case cfg.Assets.Token != "":
			opts = append(opts, assets.WithToken(cfg.Assets.Token))
		case cfg.HTTP.JWTSecret != "":
			secret := cfg.HTTP.JWTSecret
			opts = append(opts, assets.WithTokenSource(func(context.Context) (string, error) {
				return auth.ServiceToken(secret, "library3d-api", 5*time.Minute)
			}))
		}
		return assets.NewClient(cfg.Assets.BaseURL, cfg.Assets.RPS, cfg.Assets.MaxRetries, opts...)
	}
	if store != nil {
		return asset.ModelResolver{Store: store}
	}
	return nil
}

func openProvider(ctx context.Context, cfg config.CatalogConfig, logger logrus.FieldLogger) (catalog.Provider, func(), error) {
	if cfg.Source != config.SourcePostgres {
		logger.Info("serving the built-in catalog fixture")
		return catalog.NewMemoryProvider(catalog.Fixture()), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database (%s): %w", redactDSN(cfg.DSN), err)
	}
	logger.Info("database connection OK")
	return catalog.NewPostgresProvider(pool, cfg.Timeout), pool.Close, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
