package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PaperTracker/internal/domain"
	"PaperTracker/internal/scanner"
)

const listingBaseURL = "https://arxiv.org"

var listingDateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// ListingSource crawls category listing pages and extracts papers for the
// requested day. It is the HTML fallback to the Atom API and produces the
// same records, subject to the same required-field rules.
type ListingSource struct {
	client   *http.Client
	baseURL  string
	pageSize int
}

var _ scanner.Scanner = (*ListingSource)(nil)

// NewListingSource wires an HTTP client; pageSize defaults to 200.
func NewListingSource(client *http.Client) *ListingSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ListingSource{client: client, baseURL: listingBaseURL, pageSize: 200}
}

// Name identifies the strategy inside the registry.
func (l *ListingSource) Name() string {
	return "arxiv-listing"
}

// Scan walks each category listing and returns the papers published on the
// requested day, deduplicated by id across categories.
func (l *ListingSource) Scan(ctx context.Context, req scanner.Request) ([]domain.Paper, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories provided for source %s", req.SourceName)
	}

	targetDay := dateOnly(req.Day)
	results := make([]domain.Paper, 0)
	seen := map[string]struct{}{}

	for _, cat := range req.Categories {
		skip := 0
		for {
			pageURL, err := buildListingURL(l.baseURL+"/list/"+cat+"/recent", skip, l.pageSize)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat, err)
			}

			doc, err := l.fetchDocument(ctx, pageURL)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat, err)
			}

			pagePapers, shouldContinue := l.extractPapers(doc, targetDay, cat)
			for _, paper := range pagePapers {
				if _, ok := seen[paper.ID]; ok {
					continue
				}
				seen[paper.ID] = struct{}{}
				results = append(results, paper)
			}

			if !shouldContinue {
				break
			}
			skip += l.pageSize
		}
	}

	return results, nil
}

func (l *ListingSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PaperTracker/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (l *ListingSource) extractPapers(doc *goquery.Document, targetDay time.Time, category string) ([]domain.Paper, bool) {
	var (
		collected    []domain.Paper
		continueScan = true
		processed    int
	)

	doc.Find("dl > dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		dd := dt.Next()
		processed++

		paper, publishedAt, err := parseListingEntry(dt, dd, category)
		if err != nil {
			return true
		}

		if publishedAt.Equal(targetDay) {
			collected = append(collected, paper)
		}
		if publishedAt.Before(targetDay) {
			continueScan = false
			return false
		}

		return true
	})

	if processed < l.pageSize {
		continueScan = false
	}

	return collected, continueScan
}

func parseListingEntry(dt, dd *goquery.Selection, category string) (domain.Paper, time.Time, error) {
	absLink := dt.Find(`a[href*="/abs/"]`).First()
	href, _ := absLink.Attr("href")
	id := strings.TrimSpace(href)
	if idx := strings.LastIndex(id, "/abs/"); idx >= 0 {
		id = id[idx+len("/abs/"):]
	}
	if id == "" {
		return domain.Paper{}, time.Time{}, fmt.Errorf("listing entry has no id")
	}

	title := collapseSpace(strings.TrimPrefix(strings.TrimSpace(dd.Find(".list-title").First().Text()), "Title:"))
	if title == "" {
		return domain.Paper{}, time.Time{}, fmt.Errorf("entry %s has no title", id)
	}

	abstract := collapseSpace(strings.TrimPrefix(strings.TrimSpace(dd.Find("p.mathjax").First().Text()), "Abstract:"))
	if abstract == "" {
		return domain.Paper{}, time.Time{}, fmt.Errorf("entry %s has no abstract", id)
	}

	pdfHref, _ := dt.Find(`a[href*="/pdf/"]`).First().Attr("href")
	if pdfHref == "" {
		return domain.Paper{}, time.Time{}, fmt.Errorf("entry %s has no pdf link", id)
	}
	if !strings.HasPrefix(pdfHref, "http") {
		pdfHref = listingBaseURL + pdfHref
	}

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}
	match := listingDateExpr.FindString(dateText)
	if match == "" {
		return domain.Paper{}, time.Time{}, fmt.Errorf("entry %s has no date", id)
	}
	publishedAt, err := time.Parse("2 Jan 2006", match)
	if err != nil {
		return domain.Paper{}, time.Time{}, fmt.Errorf("entry %s date: %w", id, err)
	}

	var authors []string
	dd.Find(".list-authors a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			authors = append(authors, name)
		}
	})

	paper := domain.Paper{
		ID:            id,
		Title:         title,
		Authors:       authors,
		Abstract:      abstract,
		PDFURL:        pdfHref,
		PublishedDate: dateOnly(publishedAt),
		Categories:    []string{category},
	}

	return paper, dateOnly(publishedAt), nil
}

func buildListingURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
