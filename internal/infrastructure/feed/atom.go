package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"PaperTracker/internal/domain"
	"PaperTracker/internal/scanner"
)

const (
	defaultBaseURL = "https://export.arxiv.org/api/query"
	pdfMediaType   = "application/pdf"
)

var spaceExpr = regexp.MustCompile(`\s+`)

// Atom feed wire structures for the export API.

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// AtomSource fetches papers from the export API Atom feed. Malformed
// entries are skipped individually; one bad entry never aborts a batch.
type AtomSource struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

var _ scanner.Scanner = (*AtomSource)(nil)

// NewAtomSource wires an HTTP client; a nil client gets a 30s timeout default.
func NewAtomSource(client *http.Client, logger *slog.Logger) *AtomSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &AtomSource{client: client, baseURL: defaultBaseURL, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *AtomSource) Name() string {
	return "arxiv-api"
}

// BuildQuery constructs the boolean search query for a category set and a
// single submission date: (cat:A OR cat:B ...) AND submittedDate:YYYYMMDD*
func BuildQuery(categories []string, day time.Time) string {
	terms := make([]string, 0, len(categories))
	for _, cat := range categories {
		terms = append(terms, "cat:"+cat)
	}
	return fmt.Sprintf("(%s) AND submittedDate:%s*", strings.Join(terms, " OR "), day.Format("20060102"))
}

// Scan issues one feed request for the requested categories and date and
// returns the parsed papers in feed order.
func (s *AtomSource) Scan(ctx context.Context, req scanner.Request) ([]domain.Paper, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories provided for source %s", req.SourceName)
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	params := url.Values{}
	params.Set("search_query", BuildQuery(req.Categories, req.Day))
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))

	return s.fetch(ctx, params)
}

// FetchByID looks up a single paper via the id_list parameter. Returns nil
// when the feed comes back empty.
func (s *AtomSource) FetchByID(ctx context.Context, paperID string) (*domain.Paper, error) {
	params := url.Values{}
	params.Set("id_list", paperID)

	papers, err := s.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, nil
	}
	return &papers[0], nil
}

func (s *AtomSource) fetch(ctx context.Context, params url.Values) ([]domain.Paper, error) {
	reqURL := s.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PaperTracker/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	return s.parseFeed(body)
}

// parseFeed decodes the feed document and converts entries, dropping any
// entry that fails to parse and keeping count of the drops.
func (s *AtomSource) parseFeed(body []byte) ([]domain.Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Entries))
	skipped := 0
	for _, entry := range feed.Entries {
		paper, err := parseEntry(entry)
		if err != nil {
			skipped++
			continue
		}
		papers = append(papers, paper)
	}

	if skipped > 0 && s.logger != nil {
		s.logger.Warn("skipped malformed feed entries", "skipped", skipped, "parsed", len(papers))
	}

	return papers, nil
}

// parseEntry converts one feed entry into a Paper. Entries missing id,
// title, abstract, pdf link, or a parseable published date are rejected.
func parseEntry(entry atomEntry) (domain.Paper, error) {
	id := entryID(entry.ID)
	if id == "" {
		return domain.Paper{}, fmt.Errorf("entry has no id")
	}

	title := collapseSpace(entry.Title)
	if title == "" {
		return domain.Paper{}, fmt.Errorf("entry %s has no title", id)
	}

	abstract := collapseSpace(entry.Summary)
	if abstract == "" {
		return domain.Paper{}, fmt.Errorf("entry %s has no abstract", id)
	}

	pdfURL := pdfLink(entry.Links)
	if pdfURL == "" {
		return domain.Paper{}, fmt.Errorf("entry %s has no pdf link", id)
	}

	published, err := time.Parse(time.RFC3339, entry.Published)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("entry %s published date: %w", id, err)
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, c := range entry.Categories {
		if c.Term != "" {
			categories = append(categories, c.Term)
		}
	}

	return domain.Paper{
		ID:            id,
		Title:         title,
		Authors:       authors,
		Abstract:      abstract,
		PDFURL:        pdfURL,
		PublishedDate: dateOnly(published),
		Categories:    categories,
	}, nil
}

// entryID extracts the opaque paper id as the last path segment of the
// entry identifier URL.
func entryID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "/")
	return parts[len(parts)-1]
}

// pdfLink picks the link whose type attribute is exactly the PDF media
// type; there is no fallback to other link kinds.
func pdfLink(links []atomLink) string {
	for _, link := range links {
		if link.Type == pdfMediaType {
			return link.Href
		}
	}
	return ""
}

func collapseSpace(text string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(text, " "))
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
