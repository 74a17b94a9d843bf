package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memo/internal/chat"
)

func TestGeminiProviderChat(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates":[{"content":{"role":"model","parts":[{"text":"{\"type\":\"idea\","},{"text":"\"reply\":\"ok\"}"}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":2,"totalTokenCount":5}
		}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), Config{BaseURL: srv.URL, APIKey: "k", Model: "gemini-test"})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	resp, err := p.Chat(context.Background(), ChatRequest{
		System:    "classify",
		Messages:  []chat.Message{chat.User("oat milk")},
		MaxTokens: 1000,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != `{"type":"idea","reply":"ok"}` {
		t.Fatalf("Content=%q", resp.Content)
	}
	if resp.Usage.TotalTokens != 5 {
		t.Fatalf("TotalTokens=%d, want 5", resp.Usage.TotalTokens)
	}
	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Fatalf("path=%q", gotPath)
	}
}

func TestGeminiProviderChat_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	_, err = p.Chat(context.Background(), ChatRequest{Messages: []chat.Message{chat.User("x")}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v, want *APIError", err)
	}
	if apiErr.Status != 400 {
		t.Fatalf("Status=%d, want 400", apiErr.Status)
	}
}
