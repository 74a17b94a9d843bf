package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"memo/internal/bootstrap"
	"memo/internal/orchestrator"
)

const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

// Loop holds REPL state: orchestrator, input and output.
// Loop 持有 REPL 状态：编排器、输入与输出。
type Loop struct {
	*bootstrap.BuildResult
	in  LineInput
	out io.Writer
}

// NewLoop builds a REPL loop from a BuildResult. The orchestrator's /clear
// confirmation is routed through in.
func NewLoop(res *bootstrap.BuildResult, in LineInput, out io.Writer) *Loop {
	if out == nil {
		out = os.Stdout
	}
	if res != nil && res.Orch != nil {
		res.Orch.SetConfirmCallback(ConfirmPrompt(in))
	}
	return &Loop{BuildResult: res, in: in, out: out}
}

// Run 循环读取输入并交给 RunInput，直到 /exit 或 EOF
// Run reads lines and hands them to RunInput until /exit or EOF.
func (loop *Loop) Run(ctx context.Context) error {
	if loop.BuildResult == nil || loop.Orch == nil {
		return fmt.Errorf("orchestrator is nil")
	}
	orch := loop.Orch
	if transcript := orch.Transcript(); len(transcript) > 0 {
		fmt.Fprintln(loop.out, transcript[0].Content)
		fmt.Fprintln(loop.out)
	}

	for {
		line, err := loop.in.ReadLine(loop.prompt())
		if err != nil {
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(loop.out)
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(loop.out, orch.Lang().T("repl.bye"))
				return nil
			default:
				return fmt.Errorf("read input: %w", err)
			}
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		_, err = orch.RunInput(ctx, input, loop.out)
		switch {
		case err == nil:
		case errors.Is(err, orchestrator.ErrExit):
			fmt.Fprintln(loop.out, orch.Lang().T("repl.bye"))
			return nil
		case errors.Is(err, orchestrator.ErrBusy):
			loop.printError(orch.Lang().T("error.busy"))
		default:
			loop.printError(err.Error())
		}
	}
}

// prompt shows the item count and model, then the input marker.
func (loop *Loop) prompt() string {
	orch := loop.Orch
	count := 0
	if store := orch.Store(); store != nil {
		count = store.Snapshot().Count()
	}
	line1 := fmt.Sprintf("%s · %s", orch.Lang().T("app.count", count), orch.CurrentModel())
	if useColor() {
		return ansiDim + line1 + ansiReset + "\n" + ansiGreen + "> " + ansiReset
	}
	return line1 + "\n> "
}

func (loop *Loop) printError(msg string) {
	if useColor() {
		fmt.Fprintf(loop.out, "%s%s%s\n", ansiRed, msg, ansiReset)
		return
	}
	fmt.Fprintln(loop.out, msg)
}

func useColor() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("MEMO_NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
