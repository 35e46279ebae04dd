package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/wealthplay/nex-mentor/internal/config"
	"github.com/wealthplay/nex-mentor/internal/core/ports"
	"github.com/wealthplay/nex-mentor/internal/core/usecase"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/content/static"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/llm/ollama"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/queue/nats"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/repository/postgres"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/resilience"
)

// Observers are the optional metric sinks wired into the adapters.
type Observers struct {
	Mentor        ports.MentorObserver
	Chat          ollama.ChatObserver
	BreakerChange func(operation, from, to string)
}

type App struct {
	Config config.Config

	Executor  *resilience.Executor
	MentorUC  *usecase.MentorUseCase
	CatalogUC *usecase.CatalogUseCase

	// TopicChatUC is nil when topic chat history is disabled.
	TopicChatUC *usecase.TopicChatUseCase

	// Subscriber is set for the worker only.
	Subscriber ports.ExchangeSubscriber

	closeFns []func()
}

// New wires the API: content provider, Ollama client and use cases, plus the
// history pipeline when enabled.
func New(ctx context.Context, cfg config.Config, observers Observers) (*App, error) {
	app := &App{Config: cfg}

	resilienceCfg := cfg.Resilience
	resilienceCfg.OnStateChange = observers.BreakerChange
	app.Executor = resilience.NewExecutor(resilienceCfg)

	var db *sql.DB
	needsDB := cfg.ContentSource == config.ContentSourcePostgres || cfg.TopicChatHistoryEnable
	if needsDB {
		var err error
		db, err = openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.onClose(func() { _ = db.Close() })
	}

	content, err := newContentProvider(ctx, cfg, db)
	if err != nil {
		app.Close()
		return nil, err
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, ollama.Options{
		Timeout:            cfg.OllamaTimeout(),
		ResilienceExecutor: app.Executor,
		Observer:           observers.Chat,
	})

	app.MentorUC = usecase.NewMentorUseCase(content, ollamaClient, observers.Mentor, usecase.MentorOptions{
		Model:                cfg.OllamaModel,
		MatchCutoff:          cfg.MentorMatchCutoff,
		FallbackExcerptChars: cfg.MentorFallbackExcerptChars,
	})
	app.CatalogUC = usecase.NewCatalogUseCase(content)

	if cfg.TopicChatHistoryEnable {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSExchangeSubject, nats.Options{
			ClientName:         "nex-mentor-api",
			ResilienceExecutor: app.Executor,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.onClose(queue.Close)
		app.TopicChatUC = usecase.NewTopicChatUseCase(postgres.NewTopicChatRepository(db), queue)
	}

	return app, nil
}

// NewWorker wires only the history pipeline: queue subscriber and chat store.
func NewWorker(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}
	app.Executor = resilience.NewExecutor(cfg.Resilience)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.onClose(func() { _ = db.Close() })

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSExchangeSubject, nats.Options{
		ClientName:         "nex-mentor-worker",
		ResilienceExecutor: app.Executor,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	app.Subscriber = queue
	app.onClose(queue.Close)

	// The worker only records; it never publishes.
	app.TopicChatUC = usecase.NewTopicChatUseCase(postgres.NewTopicChatRepository(db), nil)
	return app, nil
}

// OpenContentRepository opens Postgres for the content import command.
func OpenContentRepository(ctx context.Context, cfg config.Config) (*postgres.ContentRepository, func(), error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewContentRepository(db), func() { _ = db.Close() }, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func newContentProvider(ctx context.Context, cfg config.Config, db *sql.DB) (ports.ContentProvider, error) {
	switch cfg.ContentSource {
	case config.ContentSourcePostgres:
		slog.InfoContext(ctx, "content_source_selected", "source", cfg.ContentSource)
		return postgres.NewContentRepository(db), nil
	case config.ContentSourceStatic, "":
		index, err := static.Load(cfg.ContentPath)
		if err != nil {
			return nil, fmt.Errorf("load static content: %w", err)
		}
		slog.InfoContext(ctx, "content_source_selected", "source", config.ContentSourceStatic, "path", cfg.ContentPath)
		return index, nil
	default:
		return nil, fmt.Errorf("unknown CONTENT_SOURCE %q", cfg.ContentSource)
	}
}

func (a *App) onClose(fn func()) {
	a.closeFns = append(a.closeFns, fn)
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
