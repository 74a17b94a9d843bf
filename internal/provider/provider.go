package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"memo/internal/chat"
)

// Provider kinds accepted by New.
const (
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
	KindGemini    = "gemini"
)

// ChatRequest 封装一次模型请求
// ChatRequest wraps a single model call
type ChatRequest struct {
	Model     string
	System    string
	Messages  []chat.Message
	MaxTokens int
}

// Usage token 用量统计
// Usage reports token consumption
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse 完整响应
// ChatResponse is the complete response
type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// ModelInfo 模型基本信息
// ModelInfo describes a model
type ModelInfo struct {
	ID      string
	OwnedBy string
}

// Provider 模型提供方接口
// Provider is the model backend interface. Chat makes exactly one request;
// no provider retries on its own.
type Provider interface {
	// Chat 发送聊天请求并返回完整响应
	// Chat sends a request and returns the complete response
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)

	// ListModels 列出可用模型
	// ListModels lists available models
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Name 返回 provider 名称
	// Name returns the provider name
	Name() string

	// CurrentModel 返回当前活跃模型
	// CurrentModel returns the current active model
	CurrentModel() string

	// SetModel 切换活跃模型
	// SetModel switches the active model
	SetModel(model string) error
}

// APIError 远端返回的应用层错误（非 2xx 或错误信封）
// APIError is an application error reported by the remote side: a non-2xx
// status or an error envelope. Anything else returned from Chat is a
// transport failure.
type APIError struct {
	Provider string
	Status   int
	Type     string
	Message  string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.Status > 0 {
		fmt.Fprintf(&b, " %d", e.Status)
	}
	if e.Type != "" {
		b.WriteString(" ")
		b.WriteString(e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Config selects and configures one backend.
type Config struct {
	Kind      string
	BaseURL   string
	APIKey    string
	Model     string
	TimeoutMS int
}

// New 按配置创建 provider
// New builds the provider named by cfg.Kind.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindAnthropic:
		return NewAnthropicProvider(cfg), nil
	case KindOpenAI:
		return NewOpenAIProvider(cfg), nil
	case KindGemini:
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Kind)
	}
}

func newHTTPClient(timeoutMS int) *http.Client {
	httpClient := &http.Client{}
	if timeoutMS > 0 {
		httpClient.Timeout = time.Duration(timeoutMS) * time.Millisecond
	}
	return httpClient
}

// modelHolder is the shared CurrentModel/SetModel implementation.
type modelHolder struct {
	mu    sync.RWMutex
	model string
}

func (h *modelHolder) CurrentModel() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.model
}

func (h *modelHolder) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model is empty")
	}
	h.mu.Lock()
	h.model = model
	h.mu.Unlock()
	return nil
}

func (h *modelHolder) pick(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return h.CurrentModel()
}
