package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"library3d/internal/asset"
	"library3d/internal/catalog"
	"library3d/internal/config"
	"library3d/internal/httpx"
	"library3d/internal/platform/metrics"
	"library3d/internal/preload"
)

// routes carries the handlers mounted by newRouter. Preload and Assets are
// optional.
type routes struct {
	Catalog   *catalog.HTTPHandler
	Preload   *preload.HTTPHandler
	Assets    *asset.HTTPHandler
	JWTSecret string
	Metrics   http.Handler
	Ready     func(ctx context.Context) error
}

func newRouter(rt routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if rt.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := rt.Ready(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	protect := func(h http.Handler) http.Handler { return h }
	if rt.JWTSecret != "" {
		protect = httpx.AuthMiddleware(rt.JWTSecret)
	}

	rt.Catalog.Register(mux)
	if rt.Preload != nil {
		rt.Preload.Register(mux, protect)
	}
	if rt.Assets != nil {
		rt.Assets.Register(mux, protect)
	}

	return mux
}

// withMiddleware wraps h in the server middleware stack, outermost first.
func withMiddleware(h http.Handler, cfg config.HTTPConfig, logger logrus.FieldLogger, m *metrics.Metrics) (http.Handler, error) {
	limiter, err := httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitClients)
	if err != nil {
		return nil, err
	}

	return httpx.Chain(h,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(logger),
		httpx.AccessLogMiddleware(logger, m.HTTPRequests),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		limiter.Middleware,
	), nil
}
