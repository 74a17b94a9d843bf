package contextmgr

import (
	"testing"

	"memo/internal/chat"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"a", 1},
		{"buy milk", 2},
		{"買牛奶", 4},
		{"還有什麼沒做？", 10},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.input); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestTokenizer_CountWithoutBPE(t *testing.T) {
	tok := &Tokenizer{encoding: "cl100k_base"}
	if tok.Precise() {
		t.Fatal("tokenizer without encoder should not be precise")
	}
	messages := []chat.Message{
		chat.User("buy milk"),
		chat.Assistant("Added.", "todo"),
	}
	// user: 4 + 1 + 2, assistant: 4 + 2 + 1
	if got := tok.Count(messages); got != 14 {
		t.Fatalf("Count = %d, want 14", got)
	}
	if got := tok.Count(nil); got != 0 {
		t.Fatalf("Count(nil) = %d", got)
	}
}

func TestTokenizer_TagIsFree(t *testing.T) {
	tok := &Tokenizer{}
	plain := tok.Count([]chat.Message{chat.Assistant("ok", "")})
	tagged := tok.Count([]chat.Message{chat.Assistant("ok", "query")})
	if plain != tagged {
		t.Fatalf("tag changed the count: %d vs %d", plain, tagged)
	}
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"claude-sonnet-4-20250514", "cl100k_base"},
		{"gemini-2.5-flash", "cl100k_base"},
		{"gpt-4o-mini", "o200k_base"},
		{"GPT-4.1", "o200k_base"},
		{"o3-mini", "o200k_base"},
		{"gpt-3.5-turbo", "cl100k_base"},
		{"", "cl100k_base"},
	}
	for _, tt := range tests {
		if got := encodingFor(tt.model); got != tt.want {
			t.Errorf("encodingFor(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}
