package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

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

func newTestApp(t *testing.T, replies ...string) (App, *orchestrator.Orchestrator, *scriptedProvider) {
	t.Helper()
	store, err := memory.NewStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	p := &scriptedProvider{replies: replies}
	orch := orchestrator.New(p, orchestrator.Options{Store: store, Lang: i18n.New("en")})
	app := NewApp(context.Background(), orch)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m.(App), orch, p
}

func press(t *testing.T, a App, msg tea.KeyMsg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_SubmitRunsTurn(t *testing.T) {
	app, orch, p := newTestApp(t, `{"type":"todo","reply":"Added to your list."}`)
	app.input.SetValue("  buy milk  ")

	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if !app.busy || app.pending != "buy milk" {
		t.Fatalf("busy=%v pending=%q", app.busy, app.pending)
	}
	if app.input.Value() != "" {
		t.Fatalf("input not cleared: %q", app.input.Value())
	}
	if !strings.Contains(app.View(), "Thinking") {
		t.Fatal("status bar should show thinking while busy")
	}

	msg := cmd()
	done, ok := msg.(TurnDoneMsg)
	if !ok {
		t.Fatalf("unexpected msg %T", msg)
	}
	if done.Err != nil || done.Reply.Type != "todo" {
		t.Fatalf("done=%+v", done)
	}
	m, _ := app.Update(done)
	app = m.(App)
	if app.busy {
		t.Fatal("busy not released")
	}
	if p.calls != 1 {
		t.Fatalf("calls=%d", p.calls)
	}
	if got := orch.Store().Snapshot().Todos; len(got) != 1 || got[0].Title != "buy milk" {
		t.Fatalf("todos=%+v", got)
	}
	transcript := orch.Transcript()
	if len(transcript) != 3 || transcript[2].Tag != "todo" {
		t.Fatalf("transcript=%+v", transcript)
	}
	if !strings.Contains(app.View(), "1 items") {
		t.Fatal("header count not refreshed")
	}
}

func TestApp_BlankEnterIgnored(t *testing.T) {
	app, _, p := newTestApp(t)
	app.input.SetValue("   ")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || app.busy {
		t.Fatalf("blank input should be ignored, busy=%v", app.busy)
	}
	if p.calls != 0 {
		t.Fatal("model called for blank input")
	}
}

func TestApp_EnterWhileBusyIgnored(t *testing.T) {
	app, _, _ := newTestApp(t, `{"type":"query","reply":"ok"}`)
	app.input.SetValue("first")
	app, first := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if first == nil {
		t.Fatal("expected first submit")
	}
	app.input.SetValue("second")
	app, second := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if second != nil {
		t.Fatal("second submit should be rejected while busy")
	}
	if app.notice != "Still working on the previous message" {
		t.Fatalf("notice=%q", app.notice)
	}
}

func TestApp_QuickPromptFillsInput(t *testing.T) {
	app, _, p := newTestApp(t)
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1"), Alt: true})
	if cmd != nil {
		t.Fatal("quick prompt should not submit")
	}
	if app.input.Value() != "What's still left to do?" {
		t.Fatalf("input=%q", app.input.Value())
	}
	if p.calls != 0 {
		t.Fatal("model called")
	}
}

func TestApp_TabSwitchesPanel(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activePanel != PanelMemory {
		t.Fatal("expected memory panel")
	}
	if !strings.Contains(app.View(), "No memos yet") {
		t.Fatal("empty memory panel should say so")
	}
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activePanel != PanelChat {
		t.Fatal("expected chat panel")
	}
}

func TestApp_MemoryDeleteAndClear(t *testing.T) {
	app, orch, _ := newTestApp(t)
	store := orch.Store()
	title := "buy milk"
	store.AddTodo(title)
	store.AddIdea("oat milk", &title)
	store.AddIdea("call mom", nil)

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if n := app.selectableCount(); n != 3 {
		t.Fatalf("selectable=%d", n)
	}

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	row, _ := app.selectedRow()
	if row.kind != rowIdea || row.text != "oat milk" {
		t.Fatalf("selected=%+v", row)
	}
	app, _ = press(t, app, runes("d"))
	if store.Snapshot().Count() != 2 {
		t.Fatalf("count=%d", store.Snapshot().Count())
	}
	if app.notice != "Deleted idea: oat milk" {
		t.Fatalf("notice=%q", app.notice)
	}

	app, _ = press(t, app, runes("C"))
	if !app.confirming {
		t.Fatal("expected confirmation")
	}
	app, _ = press(t, app, runes("n"))
	if store.Snapshot().Count() != 2 || app.notice != "Nothing cleared" {
		t.Fatalf("declined clear: count=%d notice=%q", store.Snapshot().Count(), app.notice)
	}

	app, _ = press(t, app, runes("C"))
	app, _ = press(t, app, runes("y"))
	if store.Snapshot().Count() != 0 {
		t.Fatal("store not cleared")
	}
	if app.notice != "All memos cleared" {
		t.Fatalf("notice=%q", app.notice)
	}
}

func TestApp_DeleteTodoUngroupsIdeas(t *testing.T) {
	app, orch, _ := newTestApp(t)
	store := orch.Store()
	title := "book flights"
	store.AddTodo(title)
	store.AddIdea("window seat", &title)

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app, _ = press(t, app, runes("d"))
	view := store.View()
	if len(view.Groups) != 0 || len(view.Ungrouped) != 1 {
		t.Fatalf("view=%+v", view)
	}
	if row, _ := app.selectedRow(); row.text != "window seat" {
		t.Fatalf("selection should move to the remaining idea, got %+v", row)
	}
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func runCommandLine(t *testing.T, a App, line string) App {
	t.Helper()
	a.input.SetValue(line)
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("%s: expected command", line)
	}
	done, ok := cmd().(CommandDoneMsg)
	if !ok {
		t.Fatalf("%s: unexpected msg type", line)
	}
	m, _ := a.Update(done)
	return m.(App)
}

func TestApp_SlashCommandsStayLocal(t *testing.T) {
	app, orch, p := newTestApp(t)
	orch.Store().AddTodo("buy milk")

	app = runCommandLine(t, app, "/todos")
	if !strings.Contains(app.output, "buy milk") {
		t.Fatalf("output=%q", app.output)
	}
	if app.busy || app.input.Value() != "" {
		t.Fatalf("busy=%v input=%q", app.busy, app.input.Value())
	}

	app = runCommandLine(t, app, "/lang zh-TW")
	if orch.Lang().Locale() != i18n.LocaleZhTW {
		t.Fatalf("locale=%q", orch.Lang().Locale())
	}

	if p.calls != 0 {
		t.Fatalf("slash commands reached the model %d times", p.calls)
	}
	if n := len(orch.Transcript()); n != 1 {
		t.Fatalf("transcript grew to %d messages", n)
	}
	if got := orch.Store().Snapshot().Count(); got != 1 {
		t.Fatalf("count=%d, commands must not be stored", got)
	}
}

func TestApp_SlashClearAsksFirst(t *testing.T) {
	app, orch, p := newTestApp(t)
	orch.Store().AddTodo("buy milk")

	app.input.SetValue("/clear")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || !app.confirming {
		t.Fatalf("bare /clear should ask first, confirming=%v", app.confirming)
	}
	app, _ = press(t, app, runes("y"))
	if orch.Store().Snapshot().Count() != 0 || app.notice != "All memos cleared" {
		t.Fatalf("count=%d notice=%q", orch.Store().Snapshot().Count(), app.notice)
	}
	if p.calls != 0 {
		t.Fatal("model called")
	}
}

func TestApp_SlashExitQuits(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.input.SetValue("/exit")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	done, ok := cmd().(CommandDoneMsg)
	if !ok || !errors.Is(done.Err, orchestrator.ErrExit) {
		t.Fatalf("done=%+v", done)
	}
	_, quit := app.Update(done)
	if quit == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := quit().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
