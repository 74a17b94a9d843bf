package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memo/internal/chat"
	"memo/internal/classify"
	"memo/internal/defaults"
	"memo/internal/i18n"
	"memo/internal/memory"
	"memo/internal/provider"
)

type Orchestrator struct {
	classifier   *classify.Classifier
	store        *memory.Store
	provider     provider.Provider
	lang         *i18n.I18n
	log          *zap.Logger
	onConfirm    ConfirmFunc
	onTurnDone   OnTurnDone
	persistModel ModelPersistFunc
	systemPrompt string
	quickPrompts []string
	apiKeyLength int

	busy atomic.Bool

	mu         sync.RWMutex
	transcript []chat.Message
}

// New wires a classifier and a store into one conversation. The transcript
// starts with the localized greeting.
func New(providerClient provider.Provider, opts Options) *Orchestrator {
	lang := opts.Lang
	if lang == nil {
		lang = i18n.Global()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(classify.Options{
			Provider:     providerClient,
			SystemPrompt: defaults.SystemPrompt(lang.Locale(), opts.SystemPrompt),
		})
	}
	o := &Orchestrator{
		classifier:   classifier,
		store:        opts.Store,
		provider:     providerClient,
		lang:         lang,
		log:          log.Named("orchestrator"),
		onConfirm:    opts.OnConfirm,
		onTurnDone:   opts.OnTurnDone,
		persistModel: opts.PersistModel,
		systemPrompt: opts.SystemPrompt,
		quickPrompts: append([]string(nil), opts.QuickPrompts...),
		apiKeyLength: opts.APIKeyLength,
	}
	o.Reset()
	return o
}

// Reset drops the conversation and starts over from the greeting. Stored
// memory is untouched.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transcript = []chat.Message{chat.Assistant(o.lang.T("app.welcome"), "")}
}

// Transcript returns a copy of the conversation, greeting first.
func (o *Orchestrator) Transcript() []chat.Message {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]chat.Message(nil), o.transcript...)
}

func (o *Orchestrator) Busy() bool { return o.busy.Load() }

func (o *Orchestrator) Store() *memory.Store { return o.store }

func (o *Orchestrator) Lang() *i18n.I18n { return o.lang }

// QuickPrompts returns configured prompts, falling back to the locale's.
func (o *Orchestrator) QuickPrompts() []string {
	if len(o.quickPrompts) > 0 {
		return append([]string(nil), o.quickPrompts...)
	}
	return o.lang.QuickPrompts()
}

// SetLanguage 切换界面语言，并同步系统提示中的回复语言
// SetLanguage switches the interface language and the reply language the
// model is asked for.
func (o *Orchestrator) SetLanguage(locale string) error {
	if !o.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.busy.Store(false)
	o.lang = i18n.New(locale)
	o.classifier.SetSystemPrompt(defaults.SystemPrompt(o.lang.Locale(), o.systemPrompt))
	return nil
}

// Submit runs one turn: record the user text, classify it, reconcile the
// store and append exactly one assistant message. Classification failures
// are reported in the returned Reply, not as an error; the error is only
// ErrBusy or ErrEmptyInput.
func (o *Orchestrator) Submit(ctx context.Context, input string) (Reply, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Reply{}, ErrEmptyInput
	}
	if !o.busy.CompareAndSwap(false, true) {
		return Reply{}, ErrBusy
	}
	defer o.busy.Store(false)

	requestID := uuid.NewString()
	log := o.log.With(zap.String("request_id", requestID))

	o.mu.Lock()
	history := append([]chat.Message(nil), o.transcript[1:]...)
	o.transcript = append(o.transcript, chat.User(text))
	o.mu.Unlock()

	var state memory.State
	if o.store != nil {
		state = o.store.Snapshot()
	}
	outcome, err := o.classifier.Classify(ctx, classify.Request{
		Text:    text,
		History: history,
		State:   state,
	})
	var reply Reply
	if err != nil {
		reply = o.failureReply(requestID, err)
		log.Warn("classify failed",
			zap.String("route", string(outcome.Route)),
			zap.Duration("latency", outcome.Latency),
			zap.Error(err))
	} else {
		reply = o.reconcile(requestID, text, outcome.Result)
		log.Info("turn done",
			zap.String("route", string(outcome.Route)),
			zap.String("type", string(outcome.Result.Type)),
			zap.Int("prompt_tokens", outcome.Usage.PromptTokens),
			zap.Int("completion_tokens", outcome.Usage.CompletionTokens),
			zap.Duration("latency", outcome.Latency))
	}

	o.mu.Lock()
	o.transcript = append(o.transcript, chat.Assistant(reply.Content, reply.Tag))
	o.mu.Unlock()

	if o.onTurnDone != nil {
		after := state
		if o.store != nil {
			after = o.store.Snapshot()
		}
		o.onTurnDone(reply, after)
	}
	return reply, nil
}

// reconcile applies a successful classification to the store.
func (o *Orchestrator) reconcile(requestID, text string, res classify.Result) Reply {
	reply := Reply{
		RequestID: requestID,
		Type:      res.Type,
		Content:   res.Reply,
		Tag:       string(res.Type),
	}
	if strings.TrimSpace(reply.Content) == "" {
		reply.Content = o.lang.T("error.empty_reply")
	}
	if o.store == nil {
		return reply
	}
	switch res.Type {
	case classify.TypeTodo:
		todo := o.store.AddTodo(text)
		reply.Todo = &todo
	case classify.TypeIdea:
		idea := o.store.AddIdea(text, res.RelatedTodo)
		reply.Idea = &idea
	}
	return reply
}

// failureReply renders one of the three failure classes. A malformed reply
// still carries model text, which is shown as a plain answer.
func (o *Orchestrator) failureReply(requestID string, err error) Reply {
	reply := Reply{RequestID: requestID, Failed: true, Tag: "error"}

	var cerr *classify.Error
	if !errors.As(err, &cerr) {
		reply.Content = o.lang.T("error.transport", err.Error())
		return reply
	}
	switch cerr.Kind {
	case classify.KindMalformed:
		if raw := strings.TrimSpace(cerr.Raw); raw != "" {
			reply.Type = classify.TypeQuery
			reply.Tag = string(classify.TypeQuery)
			reply.Content = raw
		} else {
			reply.Content = o.lang.T("error.empty_reply")
		}
	case classify.KindRemote:
		reply.Content = o.lang.T("error.remote", remoteDetail(cerr.Err))
	default:
		keyStatus := o.lang.T("error.key_unset")
		if o.apiKeyLength > 0 {
			keyStatus = o.lang.T("error.key_set", o.apiKeyLength)
		}
		reply.Content = o.lang.T("error.transport", cerr.Err.Error()) + "\n" + keyStatus
	}
	return reply
}

func remoteDetail(err error) string {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		kind := strings.TrimSpace(apiErr.Type)
		if kind == "" {
			kind = fmt.Sprintf("HTTP %d", apiErr.Status)
		}
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return kind + "\n" + msg
		}
		return kind
	}
	return err.Error()
}

func (o *Orchestrator) SetConfirmCallback(fn ConfirmFunc) {
	o.onConfirm = fn
}

func (o *Orchestrator) CurrentModel() string {
	if o.provider == nil {
		return ""
	}
	return o.provider.CurrentModel()
}

func (o *Orchestrator) SetModel(model string) error {
	if o.provider == nil {
		return fmt.Errorf("provider unavailable")
	}
	return o.provider.SetModel(model)
}

// RunInput 处理一行输入：斜杠命令在本地执行，其余作为一轮对话提交
// RunInput handles one line: slash commands run locally, anything else is
// submitted as a turn and its reply is rendered to out.
func (o *Orchestrator) RunInput(ctx context.Context, input string, out io.Writer) (string, error) {
	if cmd, args, ok := parseSlashCommand(input); ok {
		result, err := o.runSlashCommand(ctx, cmd, args, out)
		if err != nil {
			return "", err
		}
		if out != nil && result != "" {
			fmt.Fprintln(out, result)
		}
		return result, nil
	}
	reply, err := o.Submit(ctx, input)
	if err != nil {
		return "", err
	}
	if out != nil {
		RenderReply(out, o.lang, reply)
	}
	return reply.Content, nil
}
