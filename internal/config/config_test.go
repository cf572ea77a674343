package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databasePathEnv, "")
	t.Setenv(anthropicKeyEnv, "")

	cfg := Load()

	if cfg.Storage.Path != "papers.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Scheduler.CronExpression != "0 6 * * *" {
		t.Errorf("CronExpression = %q", cfg.Scheduler.CronExpression)
	}
	if len(cfg.Sources) == 0 {
		t.Fatal("default sources missing")
	}
	if cfg.Sources[0].Name != "arxiv-api" {
		t.Errorf("Sources[0].Name = %q", cfg.Sources[0].Name)
	}
	if cfg.Keywords.MinMatches != 1 {
		t.Errorf("MinMatches = %d", cfg.Keywords.MinMatches)
	}
	if cfg.Scheduler.Location() == nil {
		t.Error("Location should never be nil")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
storage:
  path: /var/lib/papers/papers.db
scheduler:
  cronExpression: "30 7 * * *"
keywords:
  terms: ["diffusion"]
  minMatches: 2
  caseSensitive: true
sources:
  - name: arxiv-api
    categories: ["cs.CV"]
    maxResults: 50
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databasePathEnv, "")
	t.Setenv(anthropicKeyEnv, "")

	cfg := Load()

	if cfg.Storage.Path != "/var/lib/papers/papers.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Scheduler.CronExpression != "30 7 * * *" {
		t.Errorf("CronExpression = %q", cfg.Scheduler.CronExpression)
	}
	if len(cfg.Keywords.Terms) != 1 || cfg.Keywords.Terms[0] != "diffusion" {
		t.Errorf("Keywords.Terms = %v", cfg.Keywords.Terms)
	}
	if cfg.Keywords.MinMatches != 2 {
		t.Errorf("MinMatches = %d", cfg.Keywords.MinMatches)
	}
	if !cfg.Keywords.CaseSensitive {
		t.Error("CaseSensitive not merged from file")
	}
	if cfg.Sources[0].Categories[0] != "cs.CV" || cfg.Sources[0].MaxResults != 50 {
		t.Errorf("Sources[0] = %+v", cfg.Sources[0])
	}
	// File silent on the summarizer keeps the default model.
	if cfg.Summarizer.Model == "" {
		t.Error("Summarizer.Model default lost in merge")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databasePathEnv, "/tmp/override.db")
	t.Setenv(anthropicKeyEnv, "sk-test")
	t.Setenv(anthropicModelEnv, "claude-test-model")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatIDEnv, "chat-9")

	cfg := Load()

	if cfg.Storage.Path != "/tmp/override.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Summarizer.APIKey != "sk-test" || cfg.Summarizer.Model != "claude-test-model" {
		t.Errorf("Summarizer = %+v", cfg.Summarizer)
	}
	if cfg.Notifications.Telegram.BotToken != "bot-token" || cfg.Notifications.Telegram.ChatID != "chat-9" {
		t.Errorf("Telegram = %+v", cfg.Notifications.Telegram)
	}
}

func TestBindTimezoneFallsBackOnUnknown(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Not/AZone"
	cfg.bindTimezone()

	if got := cfg.Scheduler.Location().String(); got != "UTC" {
		t.Errorf("Location = %q, want UTC", got)
	}
}
