package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"memo/internal/chat"
	"memo/internal/i18n"
	"memo/internal/orchestrator"
)

// Panel 标签页类型
// Panel identifies a tab.
type Panel int

const (
	PanelChat Panel = iota
	PanelMemory
)

// TurnDoneMsg carries the result of a submitted message back into Update.
type TurnDoneMsg struct {
	Reply orchestrator.Reply
	Err   error
}

// CommandDoneMsg carries the output of a local slash command.
type CommandDoneMsg struct {
	Output string
	Err    error
}

// App 是 TUI 的主模型
// App is the main TUI model.
type App struct {
	orch *orchestrator.Orchestrator
	ctx  context.Context

	width       int
	height      int
	activePanel Panel

	chatView   viewport.Model
	memoryView viewport.Model
	input      textarea.Model

	theme Theme
	keys  KeyMap

	busy       bool
	pending    string
	notice     string
	output     string
	selected   int
	confirming bool
	rows       []memoryRow
	ready      bool
}

// NewApp 创建 TUI 应用
// NewApp creates the TUI application.
func NewApp(ctx context.Context, orch *orchestrator.Orchestrator) App {
	if ctx == nil {
		ctx = context.Background()
	}
	lang := orch.Lang()

	ta := textarea.New()
	ta.Placeholder = lang.T("input.placeholder")
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	app := App{
		orch:        orch,
		ctx:         ctx,
		activePanel: PanelChat,
		chatView:    viewport.New(80, 20),
		memoryView:  viewport.New(80, 20),
		input:       ta,
		theme:       DarkTheme(),
		keys:        DefaultKeyMap(),
		width:       80,
		height:      24,
	}
	app.refresh()
	return app
}

// Init 实现 tea.Model 接口
// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return textarea.Blink
}

// Update 实现 tea.Model 接口
// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.relayout()
		return a, nil

	case TurnDoneMsg:
		a.busy = false
		a.pending = ""
		switch {
		case errors.Is(msg.Err, orchestrator.ErrBusy):
			a.notice = a.lang().T("status.busy")
		case msg.Err != nil:
			a.notice = msg.Err.Error()
		default:
			a.notice = ""
		}
		a.input.Focus()
		a.refresh()
		a.chatView.GotoBottom()
		return a, nil

	case CommandDoneMsg:
		a.busy = false
		switch {
		case errors.Is(msg.Err, orchestrator.ErrExit):
			return a, tea.Quit
		case errors.Is(msg.Err, orchestrator.ErrBusy):
			a.notice = a.lang().T("status.busy")
		case msg.Err != nil:
			a.notice = msg.Err.Error()
		default:
			a.notice = ""
			a.output = msg.Output
		}
		a.input.Focus()
		a.refresh()
		a.chatView.GotoBottom()
		return a, nil
	}

	if a.activePanel == PanelChat && !a.busy {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}
	if a.confirming {
		a.confirming = false
		if key.Matches(msg, a.keys.Confirm) {
			a.orch.Store().Clear()
			a.notice = a.lang().T("memory.cleared")
			a.selected = 0
		} else {
			a.notice = a.lang().T("memory.clear_aborted")
		}
		a.refresh()
		return a, nil
	}
	if key.Matches(msg, a.keys.SwitchTab) {
		if a.activePanel == PanelChat {
			a.activePanel = PanelMemory
			a.input.Blur()
		} else {
			a.activePanel = PanelChat
			if !a.busy {
				a.input.Focus()
			}
		}
		a.notice = ""
		a.relayout()
		return a, nil
	}

	if a.activePanel == PanelMemory {
		return a.handleMemoryKey(msg)
	}
	return a.handleChatKey(msg)
}

func (a App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.PageUp):
		a.chatView.HalfViewUp()
		return a, nil
	case key.Matches(msg, a.keys.PageDown):
		a.chatView.HalfViewDown()
		return a, nil
	}
	for i, binding := range a.keys.Quick {
		if key.Matches(msg, binding) {
			prompts := a.orch.QuickPrompts()
			if i < len(prompts) && !a.busy {
				a.input.SetValue(prompts[i])
				a.input.CursorEnd()
			}
			return a, nil
		}
	}
	if key.Matches(msg, a.keys.Submit) {
		return a.submit()
	}
	if a.busy {
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit 发送输入框内容；忙碌或空白时忽略
// submit sends the input box content. Blank input and a busy turn are
// ignored.
func (a App) submit() (tea.Model, tea.Cmd) {
	if a.busy {
		a.notice = a.lang().T("status.busy")
		return a, nil
	}
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return a, nil
	}
	if strings.HasPrefix(text, "/") {
		return a.runCommand(text)
	}
	a.output = ""
	a.busy = true
	a.pending = text
	a.notice = ""
	a.input.Reset()
	a.input.Blur()
	a.refresh()
	a.chatView.GotoBottom()

	orch, ctx := a.orch, a.ctx
	return a, func() tea.Msg {
		reply, err := orch.Submit(ctx, text)
		return TurnDoneMsg{Reply: reply, Err: err}
	}
}

// runCommand runs a slash command locally instead of sending it to the
// model. A bare /clear asks for confirmation in the status bar.
func (a App) runCommand(text string) (tea.Model, tea.Cmd) {
	a.input.Reset()
	a.output = ""
	if fields := strings.Fields(text); len(fields) == 1 && strings.EqualFold(fields[0], "/clear") {
		if a.orch.Store().Snapshot().Count() == 0 {
			a.notice = a.lang().T("memory.empty")
			return a, nil
		}
		a.confirming = true
		a.notice = a.lang().T("memory.clear_confirm")
		return a, nil
	}
	a.busy = true
	a.notice = ""
	a.input.Blur()
	a.refresh()

	orch, ctx := a.orch, a.ctx
	return a, func() tea.Msg {
		out, err := orch.RunInput(ctx, text, nil)
		return CommandDoneMsg{Output: strings.TrimSpace(out), Err: err}
	}
}

func (a App) handleMemoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		a.moveSelection(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveSelection(1)
	case key.Matches(msg, a.keys.Delete):
		a.deleteSelected()
	case key.Matches(msg, a.keys.ClearAll):
		if a.orch.Store().Snapshot().Count() > 0 {
			a.confirming = true
			a.notice = a.lang().T("memory.clear_confirm")
		}
	case key.Matches(msg, a.keys.PageUp):
		a.memoryView.HalfViewUp()
		return a, nil
	case key.Matches(msg, a.keys.PageDown):
		a.memoryView.HalfViewDown()
		return a, nil
	default:
		return a, nil
	}
	a.refresh()
	return a, nil
}

func (a *App) moveSelection(delta int) {
	n := a.selectableCount()
	if n == 0 {
		a.selected = 0
		return
	}
	a.selected += delta
	if a.selected < 0 {
		a.selected = 0
	}
	if a.selected >= n {
		a.selected = n - 1
	}
}

// deleteSelected 删除当前选中项；删除待办时其下灵感变为未分组
// deleteSelected removes the highlighted item. Deleting a todo leaves its
// ideas ungrouped.
func (a *App) deleteSelected() {
	row, ok := a.selectedRow()
	if !ok {
		return
	}
	store := a.orch.Store()
	lang := a.lang()
	switch row.kind {
	case rowTodo:
		todo, err := store.DeleteTodo(row.id)
		if err != nil {
			a.notice = lang.T("memory.not_found", row.id)
			return
		}
		a.notice = lang.T("memory.deleted_todo", todo.Title)
	case rowIdea:
		idea, err := store.DeleteIdea(row.id)
		if err != nil {
			a.notice = lang.T("memory.not_found", row.id)
			return
		}
		a.notice = lang.T("memory.deleted_idea", idea.Text)
	}
}

func (a *App) selectableCount() int {
	n := 0
	for _, r := range a.rows {
		if r.selectable() {
			n++
		}
	}
	return n
}

func (a *App) selectedRow() (memoryRow, bool) {
	i := 0
	for _, r := range a.rows {
		if !r.selectable() {
			continue
		}
		if i == a.selected {
			return r, true
		}
		i++
	}
	return memoryRow{}, false
}

func (a *App) lang() *i18n.I18n { return a.orch.Lang() }

// refresh 重建两个视图的内容
// refresh rebuilds both viewports from the orchestrator and the store.
func (a *App) refresh() {
	a.rows = memoryRows(a.lang(), a.orch.Store().View())
	if n := a.selectableCount(); a.selected >= n {
		a.selected = n - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
	a.chatView.SetContent(a.renderTranscript())
	a.memoryView.SetContent(a.renderMemory())
	a.keepSelectionVisible()
}

func (a *App) keepSelectionVisible() {
	line, i := -1, 0
	for n, r := range a.rows {
		if !r.selectable() {
			continue
		}
		if i == a.selected {
			line = n
			break
		}
		i++
	}
	switch {
	case line < 0:
	case line < a.memoryView.YOffset:
		a.memoryView.SetYOffset(line)
	case line >= a.memoryView.YOffset+a.memoryView.Height:
		a.memoryView.SetYOffset(line - a.memoryView.Height + 1)
	}
}

// relayout 根据窗口大小调整组件尺寸
// relayout resizes components for the current window.
func (a *App) relayout() {
	header := 2
	statusBar := 1
	inputHeight := 0
	if a.activePanel == PanelChat {
		inputHeight = 4
	}
	bodyHeight := a.height - header - statusBar - inputHeight - 1
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	a.chatView.Width = a.width
	a.chatView.Height = bodyHeight
	a.memoryView.Width = a.width
	a.memoryView.Height = bodyHeight
	a.input.SetWidth(a.width - 2)
	a.refresh()
	a.chatView.GotoBottom()
}

// View 实现 tea.Model 接口
// View implements tea.Model.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	parts := []string{a.renderHeader()}
	if a.activePanel == PanelChat {
		parts = append(parts, a.chatView.View(), a.theme.InputStyle.Width(a.width).Render(a.input.View()))
	} else {
		parts = append(parts, a.memoryView.View())
	}
	parts = append(parts, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderHeader() string {
	lang := a.lang()
	title := a.theme.TitleStyle.Render(lang.T("app.title")) + " " +
		a.theme.TaglineStyle.Render(lang.T("app.tagline"))
	count := a.theme.CountStyle.Render(countBadge(lang, a.orch.Store().Snapshot().Count()))

	tabs := []struct {
		panel Panel
		label string
	}{
		{PanelChat, lang.T("tab.chat")},
		{PanelMemory, lang.T("tab.memory")},
	}
	var rendered []string
	for _, t := range tabs {
		if t.panel == a.activePanel {
			rendered = append(rendered, a.theme.ActiveTabStyle.Render(t.label))
		} else {
			rendered = append(rendered, a.theme.InactiveTabStyle.Render(t.label))
		}
	}
	tabLine := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(count)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + count + "\n" + tabLine
}

// renderTranscript 渲染对话：用户消息原样显示，助手回复走 markdown
// renderTranscript renders the conversation. Assistant replies go through
// markdown with a tag badge when classified.
func (a App) renderTranscript() string {
	lang := a.lang()
	msgs := a.orch.Transcript()
	if a.pending != "" {
		if last := msgs[len(msgs)-1]; last.Role != chat.RoleUser || last.Content != a.pending {
			msgs = append(msgs, chat.User(a.pending))
		}
	}
	width := a.chatView.Width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for _, m := range msgs {
		if m.Role == chat.RoleUser {
			b.WriteString(lipgloss.PlaceHorizontal(a.chatView.Width, lipgloss.Right, a.theme.UserStyle.Render(m.Content)))
			b.WriteString("\n\n")
			continue
		}
		label := a.theme.AILabelStyle.Render("AI")
		if m.Tag != "" {
			label += " " + a.theme.TagStyle(m.Tag).Render("["+lang.T("tag."+m.Tag)+"]")
		}
		b.WriteString(label + "\n")
		b.WriteString(RenderMarkdown(m.Content, width))
		b.WriteString("\n\n")
	}
	if a.output != "" {
		b.WriteString(a.output)
		b.WriteString("\n\n")
	}
	if a.busy {
		b.WriteString(a.theme.MutedStyle.Render(lang.T("status.thinking")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderMemory() string {
	lang := a.lang()
	if len(a.rows) == 0 {
		return a.theme.MutedStyle.Render(lang.T("memory.empty"))
	}
	lines := make([]string, 0, len(a.rows))
	i := 0
	for _, row := range a.rows {
		selected := false
		if row.selectable() {
			selected = i == a.selected
			i++
		}
		lines = append(lines, renderRow(a.theme, row, selected, a.memoryView.Width))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar() string {
	lang := a.lang()
	status := lang.T("status.ready")
	if a.busy {
		status = lang.T("status.thinking")
	}
	left := fmt.Sprintf(" %s · %s", a.orch.CurrentModel(), status)
	if a.notice != "" {
		left += " · " + a.notice
	}
	right := keyHints(lang, a.activePanel == PanelMemory) + " "
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return a.theme.StatusBarStyle.Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

// Run 启动 TUI
// Run starts the TUI on the alternate screen.
func Run(ctx context.Context, orch *orchestrator.Orchestrator) error {
	p := tea.NewProgram(NewApp(ctx, orch), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
