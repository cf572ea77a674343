package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"PaperTracker/internal/domain"
	"PaperTracker/internal/scanner"
)

type stubScanner struct {
	name   string
	papers []domain.Paper
	err    error
	gotReq scanner.Request
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Scan(_ context.Context, req scanner.Request) ([]domain.Paper, error) {
	s.gotReq = req
	return s.papers, s.err
}

func TestFetchDayMergesAndDeduplicates(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	api := &stubScanner{name: "arxiv-api", papers: []domain.Paper{
		{ID: "2401.00001"}, {ID: "2401.00002"},
	}}
	listing := &stubScanner{name: "arxiv-listing", papers: []domain.Paper{
		{ID: "2401.00002"}, {ID: "2401.00003"},
	}}

	registry := scanner.NewRegistry()
	registry.Register(api)
	registry.Register(listing)

	source := NewSource(registry, []SourceSpec{
		{Name: "arxiv-api", Categories: []string{"cs.AI"}, MaxResults: 100},
		{Name: "arxiv-listing", Categories: []string{"cs.AI"}},
	}, nil)

	papers, err := source.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}

	if len(papers) != 3 {
		t.Fatalf("got %d papers, want 3 after dedup", len(papers))
	}
	wantOrder := []string{"2401.00001", "2401.00002", "2401.00003"}
	for i, want := range wantOrder {
		if papers[i].ID != want {
			t.Errorf("papers[%d].ID = %q, want %q", i, papers[i].ID, want)
		}
	}

	if !api.gotReq.Day.Equal(day) || api.gotReq.MaxResults != 100 {
		t.Errorf("api request = %+v", api.gotReq)
	}
}

func TestFetchDayPropagatesScanError(t *testing.T) {
	broken := &stubScanner{name: "arxiv-api", err: errors.New("upstream down")}

	registry := scanner.NewRegistry()
	registry.Register(broken)

	source := NewSource(registry, []SourceSpec{{Name: "arxiv-api"}}, nil)
	if _, err := source.FetchDay(context.Background(), time.Now()); err == nil {
		t.Fatal("expected scan error to propagate")
	}
}

func TestFetchDayUnknownSource(t *testing.T) {
	source := NewSource(scanner.NewRegistry(), []SourceSpec{{Name: "missing"}}, nil)
	if _, err := source.FetchDay(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for unregistered source")
	}
}

func TestFetchDayNoSourcesConfigured(t *testing.T) {
	source := NewSource(scanner.NewRegistry(), nil, nil)
	if _, err := source.FetchDay(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when no sources configured")
	}
}
