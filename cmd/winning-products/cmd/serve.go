package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/winning-products/internal/api/handlers"
	"github.com/donaldgifford/winning-products/internal/api/middleware"
	"github.com/donaldgifford/winning-products/internal/config"
	"github.com/donaldgifford/winning-products/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: "Serves the search and rank pipeline over HTTP, with OpenAPI docs at\n" +
			"/docs, probes at /healthz and /readyz and Prometheus metrics at /metrics.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := otel.GetTracerProvider()
	if cfg.Telemetry.Enabled {
		prov, err := telemetry.New(ctx, telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: Version,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
			SampleRate:     cfg.Telemetry.Rate(),
			ExportInterval: cfg.Telemetry.ExportInterval,
		}, telemetry.WithLogger(log))
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := prov.Shutdown(sctx); err != nil {
				log.Error("telemetry shutdown", "error", err)
			}
		}()
		tp = prov.TracerProvider()
	}

	if cfg.Rainforest.APIKey == "" {
		log.Warn("rainforest API key is not configured, searches will fail", "env", config.APIKeyEnv)
	}

	e := newServer(cfg, log, tp)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := cfg.Server.Addr()
	log.Info("starting server", "addr", addr, "version", Version)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// newServer wires the middleware chain, probes, metrics and API routes.
func newServer(cfg *config.Config, log *slog.Logger, tp trace.TracerProvider) *echo.Echo {
	rf, rl := newRainforestClient(cfg)
	eng := newEngine(cfg, log, rf)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// RequestLog wraps Recovery so recovered panics are logged as 500s.
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Recovery(log))
	e.Use(middleware.Tracing(tp))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(cfg.Rainforest.APIKey != "")
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("winning-products API", Version))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(eng))
	handlers.RegisterRankRoutes(api, handlers.NewRankHandler(eng))
	handlers.RegisterAccountRoutes(api, handlers.NewAccountHandler(rf))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	return e
}
