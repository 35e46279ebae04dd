package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wealthplay/nex-mentor/internal/bootstrap"
	"github.com/wealthplay/nex-mentor/internal/config"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/content/static"
	"github.com/wealthplay/nex-mentor/internal/observability/logging"
)

const serviceName = "nex-mentor-import"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", envErr)
	}

	path := flag.String("path", cfg.ContentPath, "course content file or folder to import")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	index, err := static.Load(*path)
	if err != nil {
		slog.Error("content_load_failed", "path", *path, "error", err)
		os.Exit(1)
	}

	repo, closeDB, err := bootstrap.OpenContentRepository(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	courses := index.Courses()
	if err := repo.ImportCourses(ctx, courses); err != nil {
		slog.Error("content_import_failed", "error", err)
		os.Exit(1)
	}
	slog.Info("content_imported", "path", *path, "courses", len(courses))
}
