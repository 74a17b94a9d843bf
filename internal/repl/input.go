package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"memo/internal/orchestrator"
)

// LineInput reads one line per call. readline on a terminal, a plain
// buffered reader otherwise.
type LineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// basicLineInput serves pipes and scripts. Prompts are echoed so a
// transcript of the session still reads naturally.
type basicLineInput struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewBasicLineInput(in io.Reader, out io.Writer) LineInput {
	return &basicLineInput{scanner: bufio.NewScanner(in), out: out}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	if !b.scanner.Scan() {
		if err := b.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(b.scanner.Text(), "\r"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
		AutoComplete:      slashCompleter(),
		InterruptPrompt:   "^C",
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

// slashCompleter completes the local commands on tab.
func slashCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/help"),
		readline.PcItem("/todos"),
		readline.PcItem("/ideas"),
		readline.PcItem("/memory"),
		readline.PcItem("/delete-todo"),
		readline.PcItem("/delete-idea"),
		readline.PcItem("/clear"),
		readline.PcItem("/q", readline.PcItem("1"), readline.PcItem("2"), readline.PcItem("3")),
		readline.PcItem("/model"),
		readline.PcItem("/lang", readline.PcItem("en"), readline.PcItem("zh-TW")),
		readline.PcItem("/exit"),
	)
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

// NewLineInput 终端下使用 readline（带历史文件），失败时退回普通读取
// NewLineInput prefers readline with a history file and falls back to a
// plain reader on stdin. The returned error is informational when the
// fallback is used.
func NewLineInput(historyPath string) (LineInput, error) {
	readlineReader, err := newReadlineInput(historyPath)
	if err == nil {
		return readlineReader, nil
	}
	return NewBasicLineInput(os.Stdin, os.Stdout), err
}

// ConfirmPrompt asks a y/N question on reader. Ctrl+C and EOF answer no.
func ConfirmPrompt(reader LineInput) orchestrator.ConfirmFunc {
	return func(_ context.Context, prompt string) (bool, error) {
		line, err := reader.ReadLine(prompt + " ")
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}
