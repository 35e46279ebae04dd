package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/wealthplay/nex-mentor/internal/adapters/http"
	"github.com/wealthplay/nex-mentor/internal/bootstrap"
	"github.com/wealthplay/nex-mentor/internal/config"
	"github.com/wealthplay/nex-mentor/internal/observability/logging"
	"github.com/wealthplay/nex-mentor/internal/observability/metrics"
)

const serviceName = "nex-mentor-api"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Observers{
		Mentor:        httpMetrics,
		Chat:          httpMetrics,
		BreakerChange: httpMetrics.RecordBreakerState,
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	deps := httpadapter.Dependencies{
		Mentor:           app.MentorUC,
		Catalog:          app.CatalogUC,
		BreakerStates:    app.Executor.States,
		ExchangeObserver: httpMetrics,
	}
	if app.TopicChatUC != nil {
		deps.TopicChat = app.TopicChatUC
	}
	router, err := httpadapter.NewRouter(cfg, deps)
	if err != nil {
		slog.Error("router_init_failed", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", httpMetrics.Middleware(serviceName, router.Handler()))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OllamaTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "content_source", cfg.ContentSource, "model", cfg.OllamaModel)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
