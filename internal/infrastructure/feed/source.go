package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PaperTracker/internal/domain"
	"PaperTracker/internal/ports"
	"PaperTracker/internal/scanner"
)

// SourceSpec names a registered scanner together with the categories it
// should cover and the per-request result cap.
type SourceSpec struct {
	Name       string
	Categories []string
	MaxResults int
}

// Source aggregates the configured scan strategies into a single catalog
// source. Papers seen from an earlier strategy win over later duplicates.
type Source struct {
	registry *scanner.Registry
	specs    []SourceSpec
	logger   *slog.Logger
}

var _ ports.PaperSource = (*Source)(nil)

func NewSource(registry *scanner.Registry, specs []SourceSpec, logger *slog.Logger) *Source {
	return &Source{registry: registry, specs: specs, logger: logger}
}

// FetchDay runs every configured strategy for the given day and merges the
// results, deduplicated by paper id.
func (s *Source) FetchDay(ctx context.Context, day time.Time) ([]domain.Paper, error) {
	if len(s.specs) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	merged := make([]domain.Paper, 0)
	seen := map[string]struct{}{}

	for _, spec := range s.specs {
		sc, err := s.registry.Resolve(spec.Name)
		if err != nil {
			return nil, err
		}

		papers, err := sc.Scan(ctx, scanner.Request{
			Day:        day,
			SourceName: spec.Name,
			Categories: spec.Categories,
			MaxResults: spec.MaxResults,
		})
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", spec.Name, err)
		}

		added := 0
		for _, paper := range papers {
			if _, ok := seen[paper.ID]; ok {
				continue
			}
			seen[paper.ID] = struct{}{}
			merged = append(merged, paper)
			added++
		}

		if s.logger != nil {
			s.logger.Info("source scan finished",
				"source", spec.Name, "fetched", len(papers), "added", added)
		}
	}

	return merged, nil
}
