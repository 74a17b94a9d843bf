package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"memo/internal/chat"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider 使用 go-openai SDK 的 Provider 实现
// OpenAIProvider implements Provider for OpenAI-compatible chat completion
// endpoints using the go-openai SDK.
type OpenAIProvider struct {
	modelHolder
	client *openai.Client
	cfg    Config
}

// NewOpenAIProvider 创建基于 SDK 的 provider
// NewOpenAIProvider creates an SDK-based provider
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		config.BaseURL = base
	}
	config.HTTPClient = newHTTPClient(cfg.TimeoutMS)

	return &OpenAIProvider{
		modelHolder: modelHolder{model: cfg.Model},
		client:      openai.NewClientWithConfig(config),
		cfg:         cfg,
	}
}

func (p *OpenAIProvider) Name() string {
	return KindOpenAI
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", wrapOpenAIError(err))
	}
	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, ModelInfo{
			ID:      m.ID,
			OwnedBy: m.OwnedBy,
		})
	}
	return models, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.pick(req.Model),
		Messages:  convertMessages(req.System, req.Messages),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return ChatResponse{}, wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, &APIError{Provider: KindOpenAI, Message: "response has no choices"}
	}
	return ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func convertMessages(system string, messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if strings.TrimSpace(system) != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

// wrapOpenAIError maps SDK errors carrying an HTTP status onto APIError.
func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider: KindOpenAI,
			Status:   apiErr.HTTPStatusCode,
			Type:     apiErr.Type,
			Message:  apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{
			Provider: KindOpenAI,
			Status:   reqErr.HTTPStatusCode,
			Message:  msg,
		}
	}
	return err
}
