package summary

import (
	"fmt"
	"strings"

	"PaperTracker/internal/domain"
)

// BuildPrompt renders the summarization request for one paper. The model is
// asked for a bare JSON object matching the payload shape; keywords, when
// configured, steer the relevance judgement.
func BuildPrompt(paper domain.StoredPaper, keywords []string) string {
	var b strings.Builder

	b.WriteString("You are an expert research assistant. Summarize the following paper.\n\n")
	fmt.Fprintf(&b, "arXiv ID: %s\n", paper.ID)
	fmt.Fprintf(&b, "Title: %s\n", paper.Title)
	if paper.Authors != "" {
		fmt.Fprintf(&b, "Authors: %s\n", paper.Authors)
	}
	fmt.Fprintf(&b, "Abstract: %s\n", paper.Abstract)

	if len(keywords) > 0 {
		fmt.Fprintf(&b, "\nKeywords to consider for relevance: %s\n", strings.Join(keywords, ", "))
	}

	b.WriteString(`
Respond with a JSON object only, no surrounding text, with these fields:
{
  "key_points": ["..."],
  "main_contributions": ["..."],
  "relevance_score": 0.0,
  "summary_text": "..."
}
relevance_score is a number between 0 and 1. summary_text is 2-4 sentences.
`)

	return b.String()
}
