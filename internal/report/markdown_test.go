package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PaperTracker/internal/domain"
)

func score(v float64) *float64 { return &v }

func summarizedPaper(i int, relevance float64) domain.StoredPaper {
	id := fmt.Sprintf("2401.%05d", i)
	return domain.StoredPaper{
		ID:             id,
		Title:          fmt.Sprintf("Paper %d", i),
		Authors:        "Alice Chen",
		URL:            domain.AbstractURL(id),
		PDFURL:         "https://arxiv.org/pdf/" + id,
		Summary:        fmt.Sprintf("Summary of paper %d.", i),
		KeyPoints:      "- a point",
		RelevanceScore: score(relevance),
		Status:         domain.StatusSummarized,
	}
}

func TestDailySplitsTopAndRemainingPapers(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	papers := make([]domain.StoredPaper, 0, 7)
	for i := 1; i <= 7; i++ {
		papers = append(papers, summarizedPaper(i, float64(10-i)))
	}

	digest := NewGenerator(t.TempDir()).Daily(day, papers)

	for _, want := range []string{
		"# Daily Paper Report - 2024-01-15",
		"**Total Papers:** 7",
		"## Statistics",
		"- Summarized: 7/7",
		"## 🏆 Top Papers",
		"### 1. Paper 1",
		"### 5. Paper 5",
		"## 📚 All Papers",
		"6. [Paper 6](https://arxiv.org/abs/2401.00006)",
		"Powered by paper-tracker",
	} {
		if !strings.Contains(digest, want) {
			t.Errorf("digest missing %q", want)
		}
	}

	if strings.Contains(digest, "### 6. Paper 6") {
		t.Error("paper 6 should be in the compact list, not a top section")
	}
}

func TestDailyAverageRelevance(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	papers := []domain.StoredPaper{
		summarizedPaper(1, 8),
		summarizedPaper(2, 6),
	}

	digest := NewGenerator(t.TempDir()).Daily(day, papers)
	if !strings.Contains(digest, "Average relevance: 7.00/10") {
		t.Errorf("digest missing average relevance:\n%s", digest)
	}
}

func TestDailyEmpty(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	digest := NewGenerator(t.TempDir()).Daily(day, nil)

	if !strings.Contains(digest, "**Total Papers:** 0") {
		t.Error("digest missing zero total")
	}
	if !strings.Contains(digest, "No papers matched") {
		t.Error("digest missing empty notice")
	}
	if strings.Contains(digest, "Top Papers") {
		t.Error("empty digest should not have a top section")
	}
}

func TestSaveLoadExists(t *testing.T) {
	gen := NewGenerator(t.TempDir())
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	if gen.Exists(day) {
		t.Error("Exists should be false before save")
	}

	path, err := gen.Save(day, "digest body")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(path, "2024-01-15.md") {
		t.Errorf("path = %q", path)
	}
	if strings.Contains(filepath.Base(path), "report") {
		t.Errorf("path = %q, want bare date filename", path)
	}

	if !gen.Exists(day) {
		t.Error("Exists should be true after save")
	}

	got, err := gen.Load(day)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "digest body" {
		t.Errorf("Load = %q", got)
	}
}
