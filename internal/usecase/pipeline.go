package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PaperTracker/internal/domain"
	"PaperTracker/internal/ports"
	"PaperTracker/internal/relevance"
	"PaperTracker/internal/report"
	"PaperTracker/internal/summary"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.PaperSource
	Repository ports.PaperRepository
	Chat       ports.ChatModel
	Scorer     *relevance.Scorer
	Parser     *summary.Parser
	Reports    *report.Generator
	Notifier   ports.Notifier
	Clock      ports.Clock
	Logger     *slog.Logger

	MinMatches     int
	SummarizeLimit int
	// DryRun renders and counts but never writes to the store or
	// publishes outbound.
	DryRun bool
}

// IngestStats counts what one ingestion pass did.
type IngestStats struct {
	Fetched    int
	Matched    int
	Stored     int
	Duplicates int
}

// SummarizeStats counts what one summarization pass did. Failed papers
// still receive an error summary and count as summarized in the store.
type SummarizeStats struct {
	Pending    int
	Summarized int
	Failed     int
}

// Pipeline implements the fetch, summarize, and report workflow.
type Pipeline struct {
	source     ports.PaperSource
	repository ports.PaperRepository
	chat       ports.ChatModel
	scorer     *relevance.Scorer
	parser     *summary.Parser
	reports    *report.Generator
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *slog.Logger

	minMatches     int
	summarizeLimit int
	dryRun         bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := deps.Parser
	if parser == nil {
		parser = summary.NewParser()
	}
	return &Pipeline{
		source:         deps.Source,
		repository:     deps.Repository,
		chat:           deps.Chat,
		scorer:         deps.Scorer,
		parser:         parser,
		reports:        deps.Reports,
		notifier:       deps.Notifier,
		clock:          deps.Clock,
		logger:         logger,
		minMatches:     deps.MinMatches,
		summarizeLimit: deps.SummarizeLimit,
		dryRun:         deps.DryRun,
	}
}

// Ingest fetches the catalog for one day, filters by keyword relevance, and
// stores the survivors as pending papers. A catalog failure aborts the pass;
// nothing is partially stored from a failed fetch.
func (p *Pipeline) Ingest(ctx context.Context, day time.Time) (IngestStats, error) {
	stats := IngestStats{}

	papers, err := p.source.FetchDay(ctx, day)
	if err != nil {
		return stats, fmt.Errorf("fetch day %s: %w", day.Format("2006-01-02"), err)
	}
	stats.Fetched = len(papers)

	// With no keywords configured the whole batch is stored unfiltered;
	// applying the filter would exclude everything, since nothing matches.
	var results []domain.FilterResult
	if len(p.scorer.Keywords()) == 0 {
		results = make([]domain.FilterResult, 0, len(papers))
		for _, paper := range papers {
			results = append(results, domain.FilterResult{Paper: paper, MatchedKeywords: []string{}})
		}
	} else {
		results = p.scorer.Filter(papers, p.minMatches)
	}
	stats.Matched = len(results)

	if p.dryRun {
		p.logger.Info("dry run, skipping store",
			"day", day.Format("2006-01-02"), "fetched", stats.Fetched, "matched", stats.Matched)
		return stats, nil
	}

	fetchedDate := p.clock.Today(ctx)
	for _, result := range results {
		created, err := p.repository.Insert(ctx, domain.StoredPaper{
			ID:            result.Paper.ID,
			Title:         result.Paper.Title,
			Authors:       domain.JoinAuthors(result.Paper.Authors),
			Abstract:      result.Paper.Abstract,
			URL:           domain.AbstractURL(result.Paper.ID),
			PDFURL:        result.Paper.PDFURL,
			PublishedDate: result.Paper.PublishedDate,
			FetchedDate:   fetchedDate,
			Status:        domain.StatusPending,
		})
		if err != nil {
			return stats, fmt.Errorf("store paper %s: %w", result.Paper.ID, err)
		}
		if created {
			stats.Stored++
		} else {
			stats.Duplicates++
		}
	}

	p.logger.Info("ingestion finished",
		"day", day.Format("2006-01-02"),
		"fetched", stats.Fetched,
		"matched", stats.Matched,
		"stored", stats.Stored,
		"duplicates", stats.Duplicates)

	return stats, nil
}

// SummarizePending runs the model over pending papers, one at a time. A
// model failure for one paper records an error summary, counts as failed,
// and moves on; it never aborts the batch.
func (p *Pipeline) SummarizePending(ctx context.Context) (SummarizeStats, error) {
	stats := SummarizeStats{}

	pending, err := p.repository.ListPending(ctx, p.summarizeLimit)
	if err != nil {
		return stats, fmt.Errorf("list pending: %w", err)
	}
	stats.Pending = len(pending)

	if p.dryRun {
		p.logger.Info("dry run, skipping summarization", "pending", stats.Pending)
		return stats, nil
	}

	for _, paper := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		parsed, failed := p.summarizeOne(ctx, paper)
		if failed {
			stats.Failed++
		}

		updated, err := p.repository.ApplySummary(ctx, paper.ID,
			parsed.SummaryText,
			formatKeyPoints(parsed.KeyPoints),
			domain.StoreScale(parsed.RelevanceScore))
		if err != nil {
			return stats, fmt.Errorf("apply summary %s: %w", paper.ID, err)
		}
		if updated {
			stats.Summarized++
		}
	}

	p.logger.Info("summarization finished",
		"pending", stats.Pending, "summarized", stats.Summarized, "failed", stats.Failed)
	return stats, nil
}

func (p *Pipeline) summarizeOne(ctx context.Context, paper domain.StoredPaper) (domain.PaperSummary, bool) {
	now := p.clock.Now(ctx)

	response, err := p.chat.Complete(ctx, summary.BuildPrompt(paper, p.scorer.Keywords()))
	if err != nil {
		p.logger.Error("model call failed", "paper", paper.ID, "error", err)
		return domain.PaperSummary{
			PaperID:           paper.ID,
			KeyPoints:         []string{},
			MainContributions: []string{},
			SummaryText:       fmt.Sprintf("Error generating summary for %s: %v", paper.ID, err),
			GeneratedAt:       now,
		}, true
	}

	return p.parser.Parse(paper.ID, response, now), false
}

// Report renders the digest for a day, saves it, optionally publishes it,
// and marks the included papers as reported. A notifier failure leaves the
// saved report in place but keeps the papers unmarked for a retry.
func (p *Pipeline) Report(ctx context.Context, day time.Time) (string, error) {
	papers, err := p.repository.ListByDate(ctx, day, "")
	if err != nil {
		return "", fmt.Errorf("list papers for %s: %w", day.Format("2006-01-02"), err)
	}

	digest := p.reports.Daily(day, papers)
	path, err := p.reports.Save(day, digest)
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	if p.dryRun {
		p.logger.Info("dry run, skipping publish and status update",
			"day", day.Format("2006-01-02"), "papers", len(papers), "path", path)
		return path, nil
	}

	if p.notifier != nil && len(papers) > 0 {
		if err := p.notifier.PublishDigest(ctx, digest); err != nil {
			return path, fmt.Errorf("publish digest: %w", err)
		}
	}

	ids := make([]string, 0, len(papers))
	for _, paper := range papers {
		ids = append(ids, paper.ID)
	}
	marked, err := p.repository.MarkReported(ctx, ids)
	if err != nil {
		return path, fmt.Errorf("mark reported: %w", err)
	}

	p.logger.Info("report finished",
		"day", day.Format("2006-01-02"), "papers", len(papers), "marked", marked, "path", path)
	return path, nil
}

// Run executes the full pipeline for one day: ingest, summarize, report.
func (p *Pipeline) Run(ctx context.Context, day time.Time) error {
	if _, err := p.Ingest(ctx, day); err != nil {
		return err
	}
	if _, err := p.SummarizePending(ctx); err != nil {
		return err
	}
	if _, err := p.Report(ctx, day); err != nil {
		return err
	}
	return nil
}

func formatKeyPoints(points []string) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for _, point := range points {
		b.WriteString("- ")
		b.WriteString(point)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
