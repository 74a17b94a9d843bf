package orchestrator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"memo/internal/classify"
	"memo/internal/i18n"
	"memo/internal/memory"
)

// ErrBusy 上一条消息仍在处理中
// ErrBusy rejects a submission while another one is in flight.
var ErrBusy = errors.New("a message is already being processed")

// ErrEmptyInput is returned for blank submissions; nothing is recorded.
var ErrEmptyInput = errors.New("empty input")

// ConfirmFunc 危险操作确认回调（REPL 读 y/N，TUI 自行确认后不走此路径）
// ConfirmFunc asks the user to confirm a destructive action such as /clear.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// OnTurnDone is called after every finished turn with the appended
// assistant message and the memory state after reconciliation.
type OnTurnDone = func(reply Reply, state memory.State)

// ModelPersistFunc stores a /model switch, e.g. config.WriteProviderModel.
type ModelPersistFunc func(model string) error

const (
	ansiReset  = "\x1b[0m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiGray   = "\x1b[90m"
	ansiBold   = "\x1b[1m"
)

type Options struct {
	Classifier *classify.Classifier
	Store      *memory.Store
	Lang       *i18n.I18n
	Logger     *zap.Logger
	OnConfirm  ConfirmFunc
	OnTurnDone OnTurnDone
	// PersistModel is optional; nil keeps /model switches in memory only.
	PersistModel ModelPersistFunc
	// SystemPrompt overrides the built-in prompt; it survives /lang switches.
	SystemPrompt string
	// QuickPrompts replace the locale's built-in quick prompts when set.
	QuickPrompts []string
	// APIKeyLength is shown after a connection failure; 0 means no key.
	APIKeyLength int
}

// Reply 一轮对话的结果
// Reply is the assistant side of a finished turn.
type Reply struct {
	RequestID string
	Type      classify.Type
	Content   string
	Tag       string
	// Failed is set when the turn did not reach the store.
	Failed bool
	Todo   *memory.Todo
	Idea   *memory.Idea
}
