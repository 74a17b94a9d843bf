package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"memo/internal/i18n"
	"memo/internal/memory"
)

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour. Renderers are cached
// per wrap width.
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	rendererMu.Lock()
	defer rendererMu.Unlock()
	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		renderers[width] = r
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.Trim(rendered, "\n")
}

type rowKind int

const (
	rowSection rowKind = iota
	rowTodo
	rowIdea
)

// memoryRow is one line of the memory tab.
type memoryRow struct {
	kind   rowKind
	id     int64
	text   string
	time   string
	nested bool
}

func (r memoryRow) selectable() bool { return r.kind != rowSection }

// memoryRows 将分组视图展开为逐行列表：待办及其下的灵感，最后是未分组灵感
// memoryRows flattens the grouped view: each todo followed by its ideas,
// then the ungrouped section.
func memoryRows(lang *i18n.I18n, view memory.View) []memoryRow {
	var rows []memoryRow
	if len(view.Groups) > 0 {
		rows = append(rows, memoryRow{kind: rowSection, text: lang.T("memory.todos")})
		for _, g := range view.Groups {
			rows = append(rows, memoryRow{kind: rowTodo, id: g.Todo.ID, text: g.Todo.Title, time: g.Todo.Time})
			for _, idea := range g.Ideas {
				rows = append(rows, memoryRow{kind: rowIdea, id: idea.ID, text: idea.Text, time: idea.Time, nested: true})
			}
		}
	}
	if len(view.Ungrouped) > 0 {
		rows = append(rows, memoryRow{kind: rowSection, text: lang.T("memory.ungrouped")})
		for _, idea := range view.Ungrouped {
			rows = append(rows, memoryRow{kind: rowIdea, id: idea.ID, text: idea.Text, time: idea.Time})
		}
	}
	return rows
}

// renderRow formats one memory row within width cells.
func renderRow(theme Theme, row memoryRow, selected bool, width int) string {
	if row.kind == rowSection {
		return theme.SectionStyle.Render(row.text)
	}
	marker := "  "
	if selected {
		marker = "▸ "
	}
	icon := "☐ "
	if row.kind == rowIdea {
		icon = "💡 "
	}
	indent := ""
	if row.nested {
		indent = "    "
	}
	stamp := "  " + row.time
	budget := width - runewidth.StringWidth(marker+indent+icon+stamp)
	if budget < 8 {
		budget = 8
	}
	text := runewidth.Truncate(strings.ReplaceAll(row.text, "\n", " "), budget, "…")
	line := marker + indent + icon + text
	if selected {
		return theme.SelectedStyle.Render(line) + theme.MutedStyle.Render(stamp)
	}
	return line + theme.MutedStyle.Render(stamp)
}

func keyHints(lang *i18n.I18n, memoryTab bool) string {
	keys := []string{"keys.tab", "keys.send", "keys.quick", "keys.quit"}
	if memoryTab {
		keys = []string{"keys.tab", "keys.nav", "keys.delete", "keys.clear", "keys.quit"}
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, lang.T(k))
	}
	return strings.Join(parts, " · ")
}

func countBadge(lang *i18n.I18n, n int) string {
	return lang.T("app.count", n)
}
