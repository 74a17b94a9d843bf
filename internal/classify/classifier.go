package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"memo/internal/chat"
	"memo/internal/contextmgr"
	"memo/internal/memory"
	"memo/internal/provider"
)

// Type is the authoritative label returned by the remote classifier.
type Type string

const (
	TypeTodo  Type = "todo"
	TypeIdea  Type = "idea"
	TypeQuery Type = "query"
)

// History modes: send only the contextual turn, or the conversation so far
// followed by it.
const (
	HistoryLatest = "latest"
	HistoryFull   = "full"
)

// Result 分类结果
// Result is a parsed classifier reply. RelatedTodo is only set for ideas.
type Result struct {
	Type        Type
	RelatedTodo *string
	Reply       string
}

type wireResult struct {
	Type        string  `json:"type"`
	RelatedTodo *string `json:"relatedTodo"`
	Reply       string  `json:"reply"`
}

// ParseReply extracts the substring from the first '{' to the last '}' and
// decodes it. Surrounding prose is tolerated.
func ParseReply(raw string) (Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Result{}, fmt.Errorf("no json object in reply: %w", ErrMalformed)
	}
	var w wireResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &w); err != nil {
		return Result{}, fmt.Errorf("decode reply: %v: %w", err, ErrMalformed)
	}

	res := Result{Type: Type(strings.ToLower(strings.TrimSpace(w.Type))), Reply: w.Reply}
	switch res.Type {
	case TypeTodo, TypeQuery:
	case TypeIdea:
		if w.RelatedTodo != nil && strings.TrimSpace(*w.RelatedTodo) != "" {
			res.RelatedTodo = w.RelatedTodo
		}
	default:
		return Result{}, fmt.Errorf("unknown type %q: %w", w.Type, ErrMalformed)
	}
	return res, nil
}

// Options configures a Classifier.
type Options struct {
	Provider     provider.Provider
	Router       *Router
	SystemPrompt string
	MaxTokens    int
	// History is HistoryLatest (default) or HistoryFull.
	History string
	// Window trims the history in HistoryFull mode.
	Window contextmgr.Window
}

// Classifier 远端分类阶段：一次请求，不重试
// Classifier is the remote stage. Each call makes exactly one request.
type Classifier struct {
	opts Options
}

func New(opts Options) *Classifier {
	if opts.Router == nil {
		opts.Router = NewRouter(nil)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.History != HistoryFull {
		opts.History = HistoryLatest
	}
	return &Classifier{opts: opts}
}

// Request is one new user input with its surrounding state.
type Request struct {
	Text string
	// History is the transcript before Text, without the greeting.
	History []chat.Message
	State   memory.State
}

// Outcome describes a successful classification.
type Outcome struct {
	Route   Route
	Result  Result
	Raw     string
	Usage   provider.Usage
	Latency time.Duration
}

// Router exposes the keyword stage.
func (c *Classifier) Router() *Router { return c.opts.Router }

// SetSystemPrompt replaces the system instruction, e.g. after a language
// switch. Callers must not race it with Classify.
func (c *Classifier) SetSystemPrompt(prompt string) { c.opts.SystemPrompt = prompt }

// Classify routes text, builds the context and asks the model. Failures are
// returned as *Error.
func (c *Classifier) Classify(ctx context.Context, req Request) (Outcome, error) {
	route := c.opts.Router.Route(req.Text)
	out := Outcome{Route: route}

	started := time.Now()
	resp, err := c.opts.Provider.Chat(ctx, provider.ChatRequest{
		System:    c.opts.SystemPrompt,
		Messages:  c.Messages(route, req),
		MaxTokens: c.opts.MaxTokens,
	})
	out.Latency = time.Since(started)
	if err != nil {
		return out, wrapProviderError(err)
	}
	out.Raw = resp.Content
	out.Usage = resp.Usage

	res, err := ParseReply(resp.Content)
	if err != nil {
		return out, &Error{Kind: KindMalformed, Raw: resp.Content, Err: err}
	}
	out.Result = res
	return out, nil
}

// Messages returns the outgoing conversation for req.
func (c *Classifier) Messages(route Route, req Request) []chat.Message {
	contextTurn := chat.User(BuildContext(route, req.Text, req.State))
	if c.opts.History != HistoryFull {
		return []chat.Message{contextTurn}
	}
	history := make([]chat.Message, 0, len(req.History)+1)
	for _, m := range chat.StripTags(req.History) {
		if m.Role == chat.RoleUser || m.Role == chat.RoleAssistant {
			history = append(history, m)
		}
	}
	history = append(history, contextTurn)
	return c.opts.Window.Trim(history)
}
