package contextmgr

import (
	"strings"
	"sync"
	"unicode"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"memo/internal/chat"
)

// messageOverhead is the per-message framing cost chat APIs add on top of
// the content tokens.
const messageOverhead = 4

// Tokenizer 统计对话 token 数；BPE 不可用时按字符估算
// Tokenizer counts conversation tokens with a tiktoken BPE, or estimates from
// characters when the BPE file cannot be loaded.
type Tokenizer struct {
	mu       sync.Mutex
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTokenizer loads encoding. A load failure (offline, no BPE cache) is not
// an error; the tokenizer estimates instead.
func NewTokenizer(encoding string) *Tokenizer {
	t := &Tokenizer{encoding: encoding}
	if enc, err := tiktoken.GetEncoding(encoding); err == nil {
		t.enc = enc
	}
	return t
}

// NewTokenizerForModel picks the encoding closest to model.
func NewTokenizerForModel(model string) *Tokenizer {
	return NewTokenizer(encodingFor(model))
}

// Precise reports whether counts come from a real BPE.
func (t *Tokenizer) Precise() bool { return t.enc != nil }

// Count implements Counter. Tags are UI labels and never reach the model, so
// only role and content are charged.
func (t *Tokenizer) Count(messages []chat.Message) int {
	total := 0
	for _, m := range messages {
		total += messageOverhead + t.countText(m.Role) + t.countText(m.Content)
	}
	return total
}

func (t *Tokenizer) countText(text string) int {
	if text == "" {
		return 0
	}
	if t.enc == nil {
		return estimateTokens(text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}

// estimateTokens 中日韩字符约 1.5 token/字，其余约 4 字符/token
// estimateTokens charges about 1.5 tokens per CJK rune and a quarter token
// per other rune. Memos are often mixed Chinese and English.
func estimateTokens(text string) int {
	var wide, narrow int
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) ||
			(r >= 0x3000 && r <= 0x303F) || (r >= 0xFF00 && r <= 0xFFEF) {
			wide++
		} else {
			narrow++
		}
	}
	n := (wide*6 + narrow) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// encodingPrefixes maps model families to a tiktoken encoding. Claude and
// Gemini publish no BPE; cl100k_base is the usual approximation.
var encodingPrefixes = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o", "o200k_base"},
	{"chatgpt-4o", "o200k_base"},
	{"gpt-4.1", "o200k_base"},
	{"o1", "o200k_base"},
	{"o3", "o200k_base"},
	{"o4", "o200k_base"},
}

func encodingFor(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, e := range encodingPrefixes {
		if strings.HasPrefix(m, e.prefix) {
			return e.encoding
		}
	}
	return "cl100k_base"
}
