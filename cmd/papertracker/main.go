package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"PaperTracker/internal/app"
	"PaperTracker/internal/config"
	"PaperTracker/internal/logging"
)

const usage = `Usage: papertracker <command> [flags]

Commands:
  init        create the database schema
  fetch       fetch and filter papers for one day
  summarize   summarize pending papers
  report      render and publish the daily report
  run         fetch, summarize, and report in one pass
  serve       run the daily pipeline on the configured schedule

Flags:
  -date YYYY-MM-DD    target day for fetch/report/run (default: yesterday)
  -limit N            cap fetched results and the summarization batch
  -categories a,b     override the configured source categories
  -keywords a,b       override the configured keyword list
  -dry-run            fetch, filter, and render without writing or publishing
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	dateArg := flags.String("date", "", "target day, YYYY-MM-DD")
	limitArg := flags.Int("limit", 0, "cap fetched results and the summarization batch")
	categoriesArg := flags.String("categories", "", "comma-separated category override")
	keywordsArg := flags.String("keywords", "", "comma-separated keyword override")
	dryRunArg := flags.Bool("dry-run", false, "no store writes, no outbound publishing")
	_ = flags.Parse(os.Args[2:])

	cfg := config.Load()
	applyFlagOverrides(&cfg, *limitArg, *categoriesArg, *keywordsArg, *dryRunArg)

	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := dispatch(ctx, application, command, *dateArg); err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func applyFlagOverrides(cfg *config.Config, limit int, categories, keywords string, dryRun bool) {
	if limit > 0 {
		cfg.Summarizer.BatchLimit = limit
		for i := range cfg.Sources {
			cfg.Sources[i].MaxResults = limit
		}
	}
	if categories != "" {
		parsed := splitList(categories)
		for i := range cfg.Sources {
			cfg.Sources[i].Categories = parsed
		}
	}
	if keywords != "" {
		cfg.Keywords.Terms = splitList(keywords)
	}
	cfg.DryRun = dryRun
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	parsed := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			parsed = append(parsed, part)
		}
	}
	return parsed
}

func dispatch(ctx context.Context, application *app.Application, command, dateArg string) error {
	switch command {
	case "init":
		return application.InitStore(ctx)
	case "fetch":
		day, err := resolveDay(ctx, application, dateArg)
		if err != nil {
			return err
		}
		_, err = application.Pipeline().Ingest(ctx, day)
		return err
	case "summarize":
		_, err := application.Pipeline().SummarizePending(ctx)
		return err
	case "report":
		day, err := resolveDay(ctx, application, dateArg)
		if err != nil {
			return err
		}
		path, err := application.Pipeline().Report(ctx, day)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "run":
		day, err := resolveDay(ctx, application, dateArg)
		if err != nil {
			return err
		}
		return application.Run(ctx, day)
	case "serve":
		return application.Serve(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// resolveDay parses the -date flag or defaults to yesterday, since the
// catalog for the current day is still filling up.
func resolveDay(ctx context.Context, application *app.Application, dateArg string) (time.Time, error) {
	if dateArg != "" {
		day, err := time.Parse("2006-01-02", dateArg)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid -date %q: %w", dateArg, err)
		}
		return day, nil
	}
	return application.Clock().Today(ctx).AddDate(0, 0, -1), nil
}
