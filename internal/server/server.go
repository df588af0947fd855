// Package server assembles the HTTP handler of the layout service.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voici5986/lumina-layout/internal/api"
	"github.com/voici5986/lumina-layout/internal/config"
	"github.com/voici5986/lumina-layout/internal/metrics"
)

// New constructs the HTTP handler for the server.
func New(cfg config.ServerConfig, parser api.Parser, version string) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"Mcp-Session-Id"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}

	preg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = preg
	prometheus.DefaultGatherer = preg
	metrics.Register(preg)

	impl := &api.API{Parser: parser, Timeout: cfg.RequestTimeout, AllowedOrigins: cfg.AllowedOrigins}

	r.Get("/health", impl.Health)
	r.Get("/openapi.json", api.OpenAPIHandler())
	r.Group(func(g chi.Router) {
		g.Use(api.APIKeyMiddleware(cfg.APIKey))
		g.Use(api.DrainMiddleware)
		g.Post("/parse", impl.Parse)
		g.Get("/parse/stream", impl.Stream)
		g.Handle("/mcp", impl.MCPHandler(version))
	})

	if cfg.MetricsAddr == fmt.Sprintf(":%d", cfg.Port) {
		r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	}

	return r
}
