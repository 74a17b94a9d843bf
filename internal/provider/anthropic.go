package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"memo/internal/chat"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicProvider 基于 Messages API 的 Provider 实现
// AnthropicProvider implements Provider on the Anthropic Messages API.
type AnthropicProvider struct {
	modelHolder
	client anthropic.Client
}

func NewAnthropicProvider(cfg Config) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithHTTPClient(newHTTPClient(cfg.TimeoutMS)),
		option.WithMaxRetries(0),
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{
		modelHolder: modelHolder{model: model},
		client:      anthropic.NewClient(opts...),
	}
}

func (p *AnthropicProvider) Name() string {
	return KindAnthropic
}

func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	iter := p.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	var models []ModelInfo
	for iter.Next() {
		m := iter.Current()
		models = append(models, ModelInfo{ID: m.ID, OwnedBy: "anthropic"})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list models: %w", wrapAnthropicError(err))
	}
	return models, nil
}

func (p *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.pick(req.Model)),
		MaxTokens: int64(maxTokens),
		Messages:  convertAnthropicMessages(req.Messages),
	}
	if strings.TrimSpace(req.System) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return ChatResponse{}, wrapAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return ChatResponse{
		Content:      text.String(),
		FinishReason: string(msg.StopReason),
		Usage:        Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
	}, nil
}

// convertAnthropicMessages drops system turns; the API takes them separately.
func convertAnthropicMessages(messages []chat.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case chat.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}

// anthropicErrorEnvelope is the body of a non-2xx Messages API response.
type anthropicErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// wrapAnthropicError lifts error.type and error.message out of the response
// body. A body that is not an envelope is kept as the message.
func wrapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	out := &APIError{Provider: KindAnthropic, Status: apiErr.StatusCode}
	raw := strings.TrimSpace(apiErr.RawJSON())
	var env anthropicErrorEnvelope
	if raw != "" && json.Unmarshal([]byte(raw), &env) == nil && (env.Error.Type != "" || env.Error.Message != "") {
		out.Type = env.Error.Type
		out.Message = env.Error.Message
		return out
	}
	out.Message = raw
	return out
}
