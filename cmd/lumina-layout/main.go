package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voici5986/lumina-layout/internal/cache"
	"github.com/voici5986/lumina-layout/internal/config"
	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/layout/ppstructure"
	"github.com/voici5986/lumina-layout/internal/layout/tesseract"
	"github.com/voici5986/lumina-layout/internal/logx"
	"github.com/voici5986/lumina-layout/internal/metrics"
	"github.com/voici5986/lumina-layout/internal/parse"
	"github.com/voici5986/lumina-layout/internal/rasterize"
	"github.com/voici5986/lumina-layout/internal/secret"
	"github.com/voici5986/lumina-layout/internal/server"
	"github.com/voici5986/lumina-layout/internal/serverstate"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	var cfg config.ServerConfig
	// defaults < file < env < args
	cfg.SetDefaults()
	defaultMetrics := cfg.MetricsAddr
	cfg.ApplyEnv()
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if (a == "--config" || a == "-config") && i+1 < len(os.Args) {
			cfg.ConfigFile = os.Args[i+1]
			break
		}
		if strings.HasPrefix(a, "--config=") || strings.HasPrefix(a, "-config=") {
			cfg.ConfigFile = a[strings.Index(a, "=")+1:]
			break
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	cfg.ApplyEnv()
	cfg.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "lumina-layout version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("lumina-layout version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	switch {
	case cfg.MetricsAddr == defaultMetrics:
		// metrics follow --port unless set explicitly
		cfg.MetricsAddr = fmt.Sprintf(":%d", cfg.Port)
	case !strings.Contains(cfg.MetricsAddr, ":"):
		cfg.MetricsAddr = ":" + cfg.MetricsAddr
	}

	logx.Configure(cfg.LogLevel)
	if cfg.LogJSON {
		logx.UseJSON(os.Stderr)
	}
	if err := cfg.Validate(); err != nil {
		logx.Log.Fatal().Err(err).Msg("invalid configuration")
	}
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var resultCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			logx.Log.Fatal().Err(err).Str("redis", secret.RedactURL(cfg.RedisAddr)).Msg("connect redis")
		}
		defer func() { _ = rc.Close() }()
		resultCache = rc
		logx.Log.Info().Str("redis", secret.RedactURL(cfg.RedisAddr)).Dur("ttl", cfg.CacheTTL).Msg("parse result cache enabled")
	}

	engines := layout.NewRegistry(cfg.DefaultEngine)
	engines.Register(ppstructure.New(ppstructure.Config{
		BaseURL: cfg.PPStructure.URL,
		APIKey:  cfg.PPStructure.APIKey,
		Timeout: cfg.PPStructure.Timeout,
	}))
	if te, err := tesseract.New(tesseract.Config{Language: cfg.Tesseract.Language}); err == nil {
		engines.Register(te)
	} else {
		logx.Log.Info().Err(err).Msg("tesseract engine unavailable")
	}
	if _, err := engines.Default(); err != nil {
		logx.Log.Fatal().Err(err).Strs("engines", engines.Names()).Msg("default engine not registered")
	}

	poppler := rasterize.NewPoppler(cfg.PdftoppmPath)
	if err := poppler.Available(); err != nil {
		logx.Log.Warn().Err(err).Msg("pdftoppm not found; parse requests will fail")
	}

	svc := parse.New(parse.Config{
		Engines:    engines,
		Rasterizer: poppler,
		Cache:      resultCache,
		DPI:        cfg.RenderDPI,
		TempDir:    cfg.TempDir,
	})

	handler := server.New(cfg, svc, version)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}
	var metricsSrv *http.Server
	if cfg.MetricsAddr != fmt.Sprintf(":%d", cfg.Port) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigCh {
			if serverstate.IsDraining() || cfg.DrainTimeout == 0 {
				logx.Log.Warn().Msg("termination requested")
				cancel()
				return
			}
			serverstate.StartDrain()
			logx.Log.Info().Int64("inflight", serverstate.InFlight()).Dur("timeout", cfg.DrainTimeout).Msg("draining; send SIGTERM again to terminate immediately")
			go func() {
				waitCtx, stop := context.WithTimeout(ctx, cfg.DrainTimeout)
				defer stop()
				if err := serverstate.WaitIdle(waitCtx); err != nil {
					if errors.Is(err, context.DeadlineExceeded) {
						logx.Log.Warn().Int64("inflight", serverstate.InFlight()).Msg("drain timeout exceeded; terminating")
					}
				} else {
					logx.Log.Info().Msg("drain complete; terminating")
				}
				cancel()
			}()
		}
	}()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			logx.Log.Error().Err(err).Msg("server shutdown")
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(context.Background()); err != nil {
				logx.Log.Error().Err(err).Msg("metrics server shutdown")
			}
		}
	}()

	if cfg.APIKey != "" {
		logx.Log.Info().Str("api_key", secret.Mask(cfg.APIKey)).Msg("API key auth enabled")
	}
	if metricsSrv != nil {
		go func() {
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}
	serverstate.SetState("ready")
	logx.Log.Info().Int("port", cfg.Port).Str("engine", engines.DefaultName()).Int("dpi", cfg.RenderDPI).Msg("layout service starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
