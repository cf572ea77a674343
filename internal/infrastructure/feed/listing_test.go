package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PaperTracker/internal/scanner"
)

func listingPage(entries string) string {
	return fmt.Sprintf(`<html><body><dl>%s</dl></body></html>`, entries)
}

func listingEntry(id, title, abstract, date string) string {
	return fmt.Sprintf(`
<dt>
  <a href="/abs/%s">arXiv:%s</a>
  <a href="/pdf/%s" title="Download PDF">pdf</a>
</dt>
<dd>
  <div class="list-title">Title: %s</div>
  <div class="list-authors"><a href="#">Dana Fox</a>, <a href="#">Eli Gray</a></div>
  <div class="list-date">Submitted %s</div>
  <p class="mathjax">%s</p>
</dd>`, id, id, id, title, date, abstract)
}

func TestListingScanExtractsMatchingDay(t *testing.T) {
	page := listingPage(
		listingEntry("2401.11111", "First Paper", "First abstract.", "15 Jan 2024") +
			listingEntry("2401.22222", "Second  Paper", "Second abstract.", "15 Jan 2024") +
			listingEntry("2401.33333", "Older Paper", "Older abstract.", "14 Jan 2024"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("skip"); got != "0" {
			t.Errorf("skip = %q, want 0", got)
		}
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewListingSource(server.Client())
	source.pageSize = 3

	source.baseURL = server.URL

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	papers, err := source.Scan(context.Background(), scanner.Request{
		Day:        day,
		SourceName: "arxiv-listing",
		Categories: []string{"cs.AI"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2 for the target day", len(papers))
	}
	if papers[0].ID != "2401.11111" || papers[1].ID != "2401.22222" {
		t.Errorf("ids = %q, %q", papers[0].ID, papers[1].ID)
	}
	if papers[1].Title != "Second Paper" {
		t.Errorf("Title = %q, want whitespace collapsed", papers[1].Title)
	}
	if len(papers[0].Authors) != 2 || papers[0].Authors[0] != "Dana Fox" {
		t.Errorf("Authors = %v", papers[0].Authors)
	}
	if papers[0].Categories[0] != "cs.AI" {
		t.Errorf("Categories = %v", papers[0].Categories)
	}
}

func TestListingScanRequiresCategories(t *testing.T) {
	source := NewListingSource(nil)
	if _, err := source.Scan(context.Background(), scanner.Request{Day: time.Now()}); err == nil {
		t.Fatal("expected error for empty category list")
	}
}

func TestBuildListingURL(t *testing.T) {
	got, err := buildListingURL("https://arxiv.org/list/cs.AI/recent", 200, 200)
	if err != nil {
		t.Fatalf("buildListingURL: %v", err)
	}
	want := "https://arxiv.org/list/cs.AI/recent?show=200&skip=200"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}
