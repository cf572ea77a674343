package main

import (
	"reflect"
	"testing"

	"PaperTracker/internal/config"
)

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.Config{
		Sources: []config.SourceConfig{
			{Name: "arxiv-api", Categories: []string{"cs.AI"}, MaxResults: 200},
			{Name: "arxiv-listing", Categories: []string{"cs.AI"}},
		},
		Keywords:   config.KeywordConfig{Terms: []string{"transformer"}, MinMatches: 1},
		Summarizer: config.SummarizerConfig{BatchLimit: 0},
	}

	applyFlagOverrides(&cfg, 25, "cs.CL, cs.IR", "retrieval, ranking", true)

	if cfg.Summarizer.BatchLimit != 25 {
		t.Errorf("BatchLimit = %d", cfg.Summarizer.BatchLimit)
	}
	for _, src := range cfg.Sources {
		if src.MaxResults != 25 {
			t.Errorf("%s MaxResults = %d", src.Name, src.MaxResults)
		}
		if !reflect.DeepEqual(src.Categories, []string{"cs.CL", "cs.IR"}) {
			t.Errorf("%s Categories = %v", src.Name, src.Categories)
		}
	}
	if !reflect.DeepEqual(cfg.Keywords.Terms, []string{"retrieval", "ranking"}) {
		t.Errorf("Keywords.Terms = %v", cfg.Keywords.Terms)
	}
	if !cfg.DryRun {
		t.Error("DryRun not set")
	}
}

func TestApplyFlagOverridesLeavesConfigAlone(t *testing.T) {
	cfg := config.Config{
		Sources:    []config.SourceConfig{{Name: "arxiv-api", Categories: []string{"cs.AI"}, MaxResults: 200}},
		Keywords:   config.KeywordConfig{Terms: []string{"transformer"}},
		Summarizer: config.SummarizerConfig{BatchLimit: 10},
	}

	applyFlagOverrides(&cfg, 0, "", "", false)

	if cfg.Summarizer.BatchLimit != 10 || cfg.Sources[0].MaxResults != 200 {
		t.Errorf("limits changed: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Keywords.Terms, []string{"transformer"}) {
		t.Errorf("Keywords.Terms = %v", cfg.Keywords.Terms)
	}
	if cfg.DryRun {
		t.Error("DryRun should stay false")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("splitList = %v", got)
	}
}
