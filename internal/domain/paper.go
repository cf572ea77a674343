package domain

import (
	"strings"
	"time"
)

// Paper is a core entity describing metadata fetched from a catalog source.
// Sources only construct a Paper when ID, Title, Abstract, PDFURL, and
// PublishedDate are all present; anything less is dropped at parse time.
type Paper struct {
	ID            string
	Title         string
	Authors       []string
	Abstract      string
	PDFURL        string
	PublishedDate time.Time
	Categories    []string
}

// AbstractURL derives the canonical abstract-page link for a paper id.
func AbstractURL(id string) string {
	return "https://arxiv.org/abs/" + id
}

// FilterResult pairs a paper with its keyword matches. RelevanceScore is on
// the 0-1 filter scale, not the 0-10 storage scale.
type FilterResult struct {
	Paper           Paper
	MatchedKeywords []string
	RelevanceScore  float64
}

// Status enumerates the stored-paper lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSummarized Status = "summarized"
	StatusReported   Status = "reported"
)

// StoredPaper is the durable record persisted for deduplication, summary
// enrichment, and reporting. Authors are flattened to a comma-joined string.
// Summary fields stay empty (RelevanceScore nil) until the paper is
// summarized; they are only ever written together.
type StoredPaper struct {
	ID             string
	Title          string
	Authors        string
	Abstract       string
	URL            string
	PDFURL         string
	PublishedDate  time.Time
	FetchedDate    time.Time
	Summary        string
	KeyPoints      string
	RelevanceScore *float64
	Status         Status
}

// JoinAuthors flattens an author list into the stored representation.
func JoinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}

// PaperSummary is the structured result recovered from an AI response.
// RelevanceScore is on the 0-1 scale; convert with StoreScale before
// persisting.
type PaperSummary struct {
	PaperID           string
	KeyPoints         []string
	MainContributions []string
	RelevanceScore    float64
	SummaryText       string
	GeneratedAt       time.Time
}

// StoreScale converts a 0-1 relevance score to the 0-10 scale used by
// StoredPaper. The two scales coexist on purpose; this is the single
// conversion point between them.
func StoreScale(score float64) float64 {
	return score * 10
}
