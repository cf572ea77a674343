package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PaperTracker/internal/domain"
)

const topPaperCount = 5

// Generator renders and stores daily markdown digests. One file per day,
// named by date, under a single output directory.
type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

// Path returns the report file location for a day.
func (g *Generator) Path(day time.Time) string {
	return filepath.Join(g.dir, day.Format("2006-01-02")+".md")
}

// Exists reports whether a digest for the day was already written.
func (g *Generator) Exists(day time.Time) bool {
	_, err := os.Stat(g.Path(day))
	return err == nil
}

// Load reads back a previously written digest.
func (g *Generator) Load(day time.Time) (string, error) {
	data, err := os.ReadFile(g.Path(day))
	if err != nil {
		return "", fmt.Errorf("load report: %w", err)
	}
	return string(data), nil
}

// Save writes the digest for a day, creating the output directory on first
// use, and returns the file path.
func (g *Generator) Save(day time.Time, digest string) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := g.Path(day)
	if err := os.WriteFile(path, []byte(digest), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Daily renders the digest for one day. Papers are expected in relevance
// order; the first five become the highlighted section, the rest a compact
// list. An empty input still produces a valid, explicitly empty report.
func (g *Generator) Daily(day time.Time, papers []domain.StoredPaper) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Paper Report - %s\n\n", day.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Total Papers:** %d\n\n", len(papers))

	if len(papers) == 0 {
		b.WriteString("No papers matched the configured filters today.\n\n")
		writeFooter(&b)
		return b.String()
	}

	writeStatistics(&b, papers)

	top := papers
	if len(top) > topPaperCount {
		top = papers[:topPaperCount]
	}

	b.WriteString("## 🏆 Top Papers\n\n")
	for i, paper := range top {
		writePaperSection(&b, i+1, paper)
	}

	if len(papers) > topPaperCount {
		b.WriteString("## 📚 All Papers\n\n")
		for i, paper := range papers[topPaperCount:] {
			writePaperLine(&b, topPaperCount+i+1, paper)
		}
		b.WriteString("\n")
	}

	writeFooter(&b)
	return b.String()
}

func writeStatistics(b *strings.Builder, papers []domain.StoredPaper) {
	summarized := 0
	var scoreSum float64
	scored := 0
	for _, paper := range papers {
		if paper.Status == domain.StatusSummarized || paper.Status == domain.StatusReported {
			summarized++
		}
		if paper.RelevanceScore != nil {
			scoreSum += *paper.RelevanceScore
			scored++
		}
	}

	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(b, "- Summarized: %d/%d\n", summarized, len(papers))
	if scored > 0 {
		fmt.Fprintf(b, "- Average relevance: %.2f/10\n", scoreSum/float64(scored))
	}
	b.WriteString("\n")
}

func writePaperSection(b *strings.Builder, rank int, paper domain.StoredPaper) {
	fmt.Fprintf(b, "### %d. %s\n\n", rank, paper.Title)
	if paper.Authors != "" {
		fmt.Fprintf(b, "**Authors:** %s\n\n", paper.Authors)
	}
	if paper.RelevanceScore != nil {
		fmt.Fprintf(b, "**Relevance:** %.1f/10\n\n", *paper.RelevanceScore)
	}
	if paper.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", paper.Summary)
	}
	if paper.KeyPoints != "" {
		fmt.Fprintf(b, "**Key points:**\n\n%s\n\n", paper.KeyPoints)
	}
	fmt.Fprintf(b, "[Abstract](%s)", paper.URL)
	if paper.PDFURL != "" {
		fmt.Fprintf(b, " | [PDF](%s)", paper.PDFURL)
	}
	b.WriteString("\n\n")
}

func writePaperLine(b *strings.Builder, rank int, paper domain.StoredPaper) {
	fmt.Fprintf(b, "%d. [%s](%s)", rank, paper.Title, paper.URL)
	if paper.RelevanceScore != nil {
		fmt.Fprintf(b, " - %.1f/10", *paper.RelevanceScore)
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder) {
	fmt.Fprintf(b, "---\n\nReport generated on %s. Powered by paper-tracker.\n",
		time.Now().UTC().Format("2006-01-02 15:04 MST"))
}
