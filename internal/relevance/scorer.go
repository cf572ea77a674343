package relevance

import (
	"math"
	"sort"
	"strings"

	"PaperTracker/internal/domain"
)

// Scorer evaluates papers against a configured keyword list. Matching is
// substring search over title and abstract, case-insensitive unless the
// caseSensitive flag is set; reported matches keep the configured casing.
type Scorer struct {
	keywords      []string
	search        []string
	caseSensitive bool
}

// NewScorer builds a case-insensitive scorer, the common configuration.
func NewScorer(keywords []string) *Scorer {
	return newScorer(keywords, false)
}

// NewCaseSensitiveScorer matches keywords exactly as configured.
func NewCaseSensitiveScorer(keywords []string) *Scorer {
	return newScorer(keywords, true)
}

func newScorer(keywords []string, caseSensitive bool) *Scorer {
	search := make([]string, 0, len(keywords))
	kept := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		kept = append(kept, kw)
		if caseSensitive {
			search = append(search, kw)
		} else {
			search = append(search, strings.ToLower(kw))
		}
	}
	return &Scorer{keywords: kept, search: search, caseSensitive: caseSensitive}
}

// Keywords returns the configured keyword list after trimming.
func (s *Scorer) Keywords() []string {
	return s.keywords
}

// Match returns the keywords found in the paper. The searchable text is
// title and abstract joined with a single space, so a phrase spanning the
// boundary still counts.
func (s *Scorer) Match(paper domain.Paper) []string {
	searchable := s.fold(paper.Title) + " " + s.fold(paper.Abstract)

	matched := make([]string, 0)
	for i, kw := range s.search {
		if strings.Contains(searchable, kw) {
			matched = append(matched, s.keywords[i])
		}
	}
	return matched
}

func (s *Scorer) fold(text string) string {
	if s.caseSensitive {
		return text
	}
	return strings.ToLower(text)
}

// Score computes the 0-1 relevance of a paper given its matched keywords.
// The base is the matched fraction of the configured list; keywords that
// also appear in the title add a bonus of 0.2 weighted by the title share.
// The result is capped at 1 and rounded to three decimals.
func (s *Scorer) Score(paper domain.Paper, matched []string) float64 {
	if len(matched) == 0 || len(s.keywords) == 0 {
		return 0
	}

	base := float64(len(matched)) / float64(len(s.keywords))

	title := s.fold(paper.Title)
	titleMatches := 0
	for _, kw := range matched {
		if strings.Contains(title, s.fold(kw)) {
			titleMatches++
		}
	}

	score := base + 0.2*float64(titleMatches)/float64(len(matched))
	if score > 1 {
		score = 1
	}
	return math.Round(score*1000) / 1000
}

// Filter keeps papers with at least minMatches keyword matches and returns
// them sorted by score descending. The sort is stable, so papers with equal
// scores keep their input order. With an empty keyword set nothing matches,
// so every paper is excluded; callers that want to keep an unfiltered batch
// must not apply the filter.
func (s *Scorer) Filter(papers []domain.Paper, minMatches int) []domain.FilterResult {
	if minMatches < 1 {
		minMatches = 1
	}

	results := make([]domain.FilterResult, 0, len(papers))
	for _, paper := range papers {
		matched := s.Match(paper)
		if len(matched) < minMatches {
			continue
		}
		results = append(results, domain.FilterResult{
			Paper:           paper,
			MatchedKeywords: matched,
			RelevanceScore:  s.Score(paper, matched),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results
}

// ByCategory keeps papers tagged with any of the wanted categories.
func ByCategory(papers []domain.Paper, categories []string) []domain.Paper {
	if len(categories) == 0 {
		return papers
	}

	wanted := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		wanted[cat] = struct{}{}
	}

	kept := make([]domain.Paper, 0, len(papers))
	for _, paper := range papers {
		for _, cat := range paper.Categories {
			if _, ok := wanted[cat]; ok {
				kept = append(kept, paper)
				break
			}
		}
	}
	return kept
}

// ByAuthor keeps papers with at least one author whose name contains any of
// the wanted names, case-insensitively.
func ByAuthor(papers []domain.Paper, authors []string) []domain.Paper {
	if len(authors) == 0 {
		return papers
	}

	lowered := make([]string, 0, len(authors))
	for _, name := range authors {
		lowered = append(lowered, strings.ToLower(name))
	}

	kept := make([]domain.Paper, 0, len(papers))
	for _, paper := range papers {
		if matchesAuthor(paper.Authors, lowered) {
			kept = append(kept, paper)
		}
	}
	return kept
}

func matchesAuthor(paperAuthors, wanted []string) bool {
	for _, author := range paperAuthors {
		author = strings.ToLower(author)
		for _, name := range wanted {
			if strings.Contains(author, name) {
				return true
			}
		}
	}
	return false
}
