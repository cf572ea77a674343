package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"PaperTracker/internal/clock"
	"PaperTracker/internal/config"
	"PaperTracker/internal/infrastructure/feed"
	"PaperTracker/internal/infrastructure/llm"
	"PaperTracker/internal/infrastructure/scheduler"
	"PaperTracker/internal/infrastructure/storage"
	"PaperTracker/internal/infrastructure/telegram"
	"PaperTracker/internal/logging"
	"PaperTracker/internal/ports"
	"PaperTracker/internal/relevance"
	"PaperTracker/internal/report"
	"PaperTracker/internal/scanner"
	"PaperTracker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	db         *sql.DB
	repository *storage.SQLiteRepository
	pipeline   *usecase.Pipeline
	clock      ports.Clock
	scheduler  *usecase.Scheduler
}

// New builds a runnable application instance. The database is opened but the
// schema is only created by InitStore.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Storage.Path, err)
	}
	repository := storage.NewSQLiteRepository(db)

	registry := scanner.NewRegistry()
	registry.Register(feed.NewAtomSource(nil, baseLogger.With("component", "source.atom")))
	registry.Register(feed.NewListingSource(nil))

	specs := make([]feed.SourceSpec, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		specs = append(specs, feed.SourceSpec{
			Name:       src.Name,
			Categories: src.Categories,
			MaxResults: src.MaxResults,
		})
	}
	source := feed.NewSource(registry, specs, baseLogger.With("component", "source"))

	var chat ports.ChatModel
	if cfg.Summarizer.APIKey != "" {
		chat = llm.NewClaudeClient(cfg.Summarizer.APIKey, cfg.Summarizer.Model, cfg.Summarizer.MaxTokens)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	skewClock := clock.NewSkewClock(nil, baseLogger.With("component", "clock"))

	scorer := relevance.NewScorer(cfg.Keywords.Terms)
	if cfg.Keywords.CaseSensitive {
		scorer = relevance.NewCaseSensitiveScorer(cfg.Keywords.Terms)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:         source,
		Repository:     repository,
		Chat:           chat,
		Scorer:         scorer,
		Reports:        report.NewGenerator(cfg.Reports.Dir),
		Notifier:       notifier,
		Clock:          skewClock,
		Logger:         baseLogger.With("component", "pipeline"),
		MinMatches:     cfg.Keywords.MinMatches,
		SummarizeLimit: cfg.Summarizer.BatchLimit,
		DryRun:         cfg.DryRun,
	})

	cronDriver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		db:         db,
		repository: repository,
		pipeline:   pipeline,
		clock:      skewClock,
		scheduler:  usecase.NewScheduler(cronDriver, pipeline),
	}, nil
}

// Pipeline exposes the orchestration component for one-shot commands.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Clock exposes the skew-corrected clock.
func (a *Application) Clock() ports.Clock {
	return a.clock
}

// InitStore creates the database schema.
func (a *Application) InitStore(ctx context.Context) error {
	return a.repository.Init(ctx)
}

// Run executes the full pipeline once for the given day.
func (a *Application) Run(ctx context.Context, day time.Time) error {
	return a.pipeline.Run(ctx, day)
}

// Serve starts the cron scheduler and blocks until the context is done.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.db.Close()
}
