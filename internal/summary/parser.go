package summary

import (
	"encoding/json"
	"strings"
	"time"

	"PaperTracker/internal/domain"
)

// payload mirrors the JSON object the model is asked to produce.
type payload struct {
	KeyPoints         []string `json:"key_points"`
	MainContributions []string `json:"main_contributions"`
	RelevanceScore    float64  `json:"relevance_score"`
	SummaryText       string   `json:"summary_text"`
}

const fallbackTruncation = 500

// Parser recovers a structured summary from a model response. Strategies are
// tried in order; a response that defeats all of them still yields a usable
// fallback summary instead of an error.
type Parser struct {
	strategies []func(string) (payload, bool)
}

func NewParser() *Parser {
	return &Parser{
		strategies: []func(string) (payload, bool){
			parseDirect,
			parseFencedBlock,
			parseEmbeddedObject,
		},
	}
}

// Parse converts a raw model response into a PaperSummary for the given
// paper. It never fails: unparseable responses fall back to a truncated
// plain-text summary with empty lists and a zero score.
func (p *Parser) Parse(paperID, response string, now time.Time) domain.PaperSummary {
	for _, strategy := range p.strategies {
		if parsed, ok := strategy(response); ok {
			return domain.PaperSummary{
				PaperID:           paperID,
				KeyPoints:         emptyIfNil(parsed.KeyPoints),
				MainContributions: emptyIfNil(parsed.MainContributions),
				RelevanceScore:    clampUnit(parsed.RelevanceScore),
				SummaryText:       parsed.SummaryText,
				GeneratedAt:       now,
			}
		}
	}
	return fallbackSummary(paperID, response, now)
}

// parseDirect accepts a response that is the JSON object and nothing else.
// Bare non-object JSON like "null" or a quoted string decodes into the
// struct without error, so only brace-delimited input is accepted.
func parseDirect(response string) (payload, bool) {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "{") {
		return payload{}, false
	}

	var parsed payload
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return payload{}, false
	}
	return parsed, true
}

// parseFencedBlock extracts a ```json fenced code block from a markdown
// response and parses its contents.
func parseFencedBlock(response string) (payload, bool) {
	lower := strings.ToLower(response)
	start := strings.Index(lower, "```json")
	if start < 0 {
		return payload{}, false
	}

	body := response[start+len("```json"):]
	end := strings.Index(body, "```")
	if end < 0 {
		return payload{}, false
	}

	return parseDirect(body[:end])
}

// parseEmbeddedObject finds the first balanced top-level brace pair in the
// response and parses it, for models that wrap the object in prose.
func parseEmbeddedObject(response string) (payload, bool) {
	start := strings.Index(response, "{")
	if start < 0 {
		return payload{}, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return parseDirect(response[start : i+1])
			}
		}
	}
	return payload{}, false
}

// fallbackSummary wraps an unparseable response as plain text, truncated so
// a runaway response cannot flood storage.
func fallbackSummary(paperID, response string, now time.Time) domain.PaperSummary {
	text := strings.TrimSpace(response)
	if len(text) > fallbackTruncation {
		text = text[:fallbackTruncation]
	}
	return domain.PaperSummary{
		PaperID:           paperID,
		KeyPoints:         []string{},
		MainContributions: []string{},
		RelevanceScore:    0,
		SummaryText:       text,
		GeneratedAt:       now,
	}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func clampUnit(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
