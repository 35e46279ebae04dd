package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wealthplay/nex-mentor/internal/bootstrap"
	"github.com/wealthplay/nex-mentor/internal/config"
	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/observability/logging"
	"github.com/wealthplay/nex-mentor/internal/observability/metrics"
)

const serviceName = "nex-mentor-worker"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", envErr)
	}

	if err := run(cfg); err != nil {
		slog.Error("worker_failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred cleanup happens before main exits.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSExchangeSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Subscriber.SubscribeExchanges(ctx, func(handlerCtx context.Context, exchange domain.MentorExchange) error {
		persistCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		if !exchange.CreatedAt.IsZero() {
			workerMetrics.ObserveExchangeLag(serviceName, time.Since(exchange.CreatedAt))
		}
		workerMetrics.StartExchange()
		start := time.Now()
		err := app.TopicChatUC.RecordExchange(persistCtx, exchange)
		workerMetrics.FinishExchange(serviceName, time.Since(start), err)
		if err == nil {
			slog.Debug("exchange_recorded", "exchange_id", exchange.ID, "course_id", exchange.CourseID)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("subscribe exchanges: %w", err)
	}
	slog.Info("worker_stopped")
	return nil
}
