package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"memo/internal/chat"
)

func TestConvertMessages(t *testing.T) {
	messages := []chat.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi", Tag: "query"},
	}

	converted := convertMessages("You are a helper", messages)
	if len(converted) != 3 {
		t.Fatalf("convertMessages len=%d, want 3", len(converted))
	}
	if converted[0].Role != "system" || converted[0].Content != "You are a helper" {
		t.Fatalf("msg[0] unexpected: %+v", converted[0])
	}
	if converted[2].Role != "assistant" || converted[2].Content != "hi" {
		t.Fatalf("msg[2] unexpected: %+v", converted[2])
	}

	if got := convertMessages("  ", messages); len(got) != 2 {
		t.Fatalf("blank system should be skipped, len=%d", len(got))
	}
}

func TestOpenAIProviderSetModel(t *testing.T) {
	p := NewOpenAIProvider(Config{Model: "gpt-4"})
	if p.CurrentModel() != "gpt-4" {
		t.Fatalf("CurrentModel()=%q, want gpt-4", p.CurrentModel())
	}
	if err := p.SetModel("gpt-4o-mini"); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	if p.CurrentModel() != "gpt-4o-mini" {
		t.Fatalf("CurrentModel()=%q after set, want gpt-4o-mini", p.CurrentModel())
	}
	if err := p.SetModel(""); err == nil {
		t.Fatal("SetModel empty should error")
	}
}

func TestOpenAIProviderName(t *testing.T) {
	p := NewOpenAIProvider(Config{})
	if p.Name() != "openai" {
		t.Fatalf("Name()=%q, want openai", p.Name())
	}
}

func TestOpenAIProviderChat(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"c1","object":"chat.completion","model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{\"type\":\"todo\",\"reply\":\"noted\"}"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{BaseURL: srv.URL + "/v1", APIKey: "k", Model: "m"})
	resp, err := p.Chat(context.Background(), ChatRequest{
		System:    "classify",
		Messages:  []chat.Message{chat.User("buy milk")},
		MaxTokens: 1000,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(resp.Content, `"todo"`) {
		t.Fatalf("Content=%q", resp.Content)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Fatalf("TotalTokens=%d, want 17", resp.Usage.TotalTokens)
	}
	if gotBody["model"] != "m" {
		t.Fatalf("request model=%v, want m", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("request messages=%d, want 2", len(msgs))
	}
}

func TestOpenAIProviderChat_RemoteErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := p.Chat(context.Background(), ChatRequest{Messages: []chat.Message{chat.User("x")}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "bad key" {
		t.Fatalf("apiErr=%+v", apiErr)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls=%d, want exactly one attempt", calls.Load())
	}
}

func TestOpenAIProviderChat_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOpenAIProvider(Config{BaseURL: url, APIKey: "k", Model: "m"})
	_, err := p.Chat(context.Background(), ChatRequest{Messages: []chat.Message{chat.User("x")}})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError: %v", err)
	}
}

func TestNew_UnknownKind(t *testing.T) {
	if _, err := New(context.Background(), Config{Kind: "llama"}); err == nil {
		t.Fatal("expected error for unknown provider kind")
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{Provider: "anthropic", Status: 529, Type: "overloaded_error", Message: "busy"}
	if got := err.Error(); got != "anthropic 529 overloaded_error: busy" {
		t.Fatalf("Error()=%q", got)
	}
}
