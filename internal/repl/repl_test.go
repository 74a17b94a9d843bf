package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"memo/internal/bootstrap"
	"memo/internal/i18n"
	"memo/internal/memory"
	"memo/internal/orchestrator"
	"memo/internal/provider"
)

type scriptedProvider struct {
	replies []string
	calls   int
}

func (p *scriptedProvider) Chat(context.Context, provider.ChatRequest) (provider.ChatResponse, error) {
	if p.calls >= len(p.replies) {
		return provider.ChatResponse{}, errors.New("no scripted response")
	}
	p.calls++
	return provider.ChatResponse{Content: p.replies[p.calls-1]}, nil
}

func (p *scriptedProvider) ListModels(context.Context) ([]provider.ModelInfo, error) { return nil, nil }
func (p *scriptedProvider) Name() string                                            { return "scripted" }
func (p *scriptedProvider) CurrentModel() string                                    { return "test-model" }
func (p *scriptedProvider) SetModel(string) error                                   { return nil }

func newTestResult(t *testing.T, p provider.Provider) *bootstrap.BuildResult {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	store, err := memory.NewStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	lang := i18n.New("en")
	orch := orchestrator.New(p, orchestrator.Options{Store: store, Lang: lang})
	return &bootstrap.BuildResult{Orch: orch, Store: store, Lang: lang}
}

func TestLoop_SessionWithConfirmedClear(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"type":"todo","reply":"Added to your list."}`}}
	res := newTestResult(t, p)
	var out bytes.Buffer
	in := NewBasicLineInput(strings.NewReader("buy milk\n\n/todos\n/clear\ny\n/exit\n"), &out)

	if err := NewLoop(res, in, &out).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"smart memo assistant",
		"[TODO]",
		"Added to your list.",
		"#",
		"Clear all memos? [y/N]",
		"All memos cleared",
		"Bye!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if res.Store.Snapshot().Count() != 0 {
		t.Fatal("store not cleared")
	}
	if p.calls != 1 {
		t.Fatalf("model calls=%d, want 1 (blank line and commands stay local)", p.calls)
	}
}

func TestLoop_DeclinedClearAndEOF(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"type":"idea","relatedTodo":null,"reply":"Saved."}`}}
	res := newTestResult(t, p)
	var out bytes.Buffer
	in := NewBasicLineInput(strings.NewReader("use oat milk\n/clear\nn\n"), &out)

	if err := NewLoop(res, in, &out).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Nothing cleared") {
		t.Fatalf("output=%s", out.String())
	}
	if res.Store.Snapshot().Count() != 1 {
		t.Fatal("declined clear removed items")
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), "Bye!") {
		t.Fatalf("EOF should end the session politely: %s", out.String())
	}
}

func TestLoop_PromptShowsCountAndModel(t *testing.T) {
	res := newTestResult(t, &scriptedProvider{})
	loop := NewLoop(res, NewBasicLineInput(strings.NewReader(""), nil), &bytes.Buffer{})
	if got := loop.prompt(); got != "0 items · test-model\n> " {
		t.Fatalf("prompt=%q", got)
	}
}

func TestBasicLineInput_LastLineWithoutNewline(t *testing.T) {
	in := NewBasicLineInput(strings.NewReader("one\ntwo"), nil)
	for _, want := range []string{"one", "two"} {
		got, err := in.ReadLine("")
		if err != nil || got != want {
			t.Fatalf("got %q err=%v, want %q", got, err, want)
		}
	}
	if _, err := in.ReadLine(""); err == nil {
		t.Fatal("expected EOF")
	}
}

func TestLoop_NilOrchestrator(t *testing.T) {
	loop := NewLoop(&bootstrap.BuildResult{}, NewBasicLineInput(strings.NewReader(""), nil), &bytes.Buffer{})
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
