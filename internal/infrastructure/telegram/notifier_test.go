package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublishDigestSendsForm(t *testing.T) {
	var gotPath, gotChatID, gotText, gotMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChatID = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		gotMode = r.PostForm.Get("parse_mode")
	}))
	defer server.Close()

	n := NewNotifier("bot-token", "chat-42")
	n.baseURL = server.URL
	n.client = server.Client()

	if err := n.PublishDigest(context.Background(), "# Digest"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotChatID != "chat-42" || gotText != "# Digest" || gotMode != "Markdown" {
		t.Errorf("form = %q %q %q", gotChatID, gotText, gotMode)
	}
}

func TestPublishDigestTruncatesLongMessages(t *testing.T) {
	var gotLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotLen = len(r.PostForm.Get("text"))
	}))
	defer server.Close()

	n := NewNotifier("t", "c")
	n.baseURL = server.URL
	n.client = server.Client()

	if err := n.PublishDigest(context.Background(), strings.Repeat("x", 5000)); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if gotLen != maxMessageLen {
		t.Errorf("sent %d chars, want %d", gotLen, maxMessageLen)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}

func TestPublishDigestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier("t", "c")
	n.baseURL = server.URL
	n.client = server.Client()

	if err := n.PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
