package orchestrator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"memo/internal/i18n"
	"memo/internal/memory"
)

// listWidth bounds one listing line in display cells.
const listWidth = 72

// RenderReply 渲染一轮回复：带分类标签的头部加正文
// RenderReply prints an assistant reply under a header naming its tag.
func RenderReply(out io.Writer, lang *i18n.I18n, reply Reply) {
	if out == nil {
		return
	}
	label, color := tagHeader(lang, reply.Tag)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%s %s\n", style("["+label+"]", color+";"+ansiBold), style(strings.Repeat("─", 40), color))
	for _, line := range compactAssistantLines(reply.Content) {
		if line == "" {
			_, _ = fmt.Fprintln(out)
			continue
		}
		_, _ = fmt.Fprintln(out, line)
	}
	_, _ = fmt.Fprintln(out)
}

func tagHeader(lang *i18n.I18n, tag string) (string, string) {
	switch tag {
	case "todo":
		return strings.ToUpper(lang.T("tag.todo")), ansiGreen
	case "idea":
		return strings.ToUpper(lang.T("tag.idea")), ansiYellow
	case "query":
		return strings.ToUpper(lang.T("tag.query")), ansiCyan
	case "error":
		return strings.ToUpper(lang.T("tag.error")), ansiRed
	default:
		return "AI", ansiCyan
	}
}

// FormatTodos lists todos oldest first, one per line with its id.
func FormatTodos(lang *i18n.I18n, todos []memory.Todo) string {
	if len(todos) == 0 {
		return lang.T("memory.empty")
	}
	var b strings.Builder
	b.WriteString(style(lang.T("memory.todos"), ansiBold))
	for _, t := range todos {
		b.WriteString("\n")
		b.WriteString(itemLine(t.ID, t.Title, t.Time, ""))
	}
	return b.String()
}

// FormatIdeas lists ideas oldest first; linked ideas show their todo title.
func FormatIdeas(lang *i18n.I18n, ideas []memory.Idea) string {
	if len(ideas) == 0 {
		return lang.T("memory.empty")
	}
	var b strings.Builder
	b.WriteString(style(lang.T("memory.ideas"), ansiBold))
	for _, idea := range ideas {
		b.WriteString("\n")
		suffix := ""
		if rel := idea.Related(); rel != "" {
			suffix = " -> " + rel
		}
		b.WriteString(itemLine(idea.ID, idea.Text, idea.Time, suffix))
	}
	return b.String()
}

// FormatMemory renders the grouped view: each todo with its ideas nested
// below, then the ungrouped ideas.
func FormatMemory(lang *i18n.I18n, view memory.View) string {
	if len(view.Groups) == 0 && len(view.Ungrouped) == 0 {
		return lang.T("memory.empty")
	}
	var b strings.Builder
	if len(view.Groups) > 0 {
		b.WriteString(style(lang.T("memory.todos"), ansiBold))
		for _, g := range view.Groups {
			b.WriteString("\n")
			b.WriteString(style(itemLine(g.Todo.ID, g.Todo.Title, g.Todo.Time, ""), ansiGreen))
			for _, idea := range g.Ideas {
				b.WriteString("\n    ")
				b.WriteString(itemLine(idea.ID, idea.Text, idea.Time, ""))
			}
		}
	}
	if len(view.Ungrouped) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(style(lang.T("memory.ungrouped"), ansiBold))
		for _, idea := range view.Ungrouped {
			b.WriteString("\n")
			b.WriteString(itemLine(idea.ID, idea.Text, idea.Time, ""))
		}
	}
	return b.String()
}

func itemLine(id int64, text, at, suffix string) string {
	body := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ") + suffix
	body = runewidth.Truncate(body, listWidth, "…")
	return fmt.Sprintf("  #%d  %s  %s", id, body, style(at, ansiGray))
}

func style(text, codes string) string {
	if text == "" || !enableColor() {
		return text
	}
	segments := strings.Split(codes, ";")
	var builder strings.Builder
	for _, segment := range segments {
		code := strings.TrimSpace(segment)
		if code == "" {
			continue
		}
		builder.WriteString(code)
	}
	if builder.Len() == 0 {
		return text
	}
	return builder.String() + text + ansiReset
}

func compactAssistantLines(content string) []string {
	normalized := strings.ReplaceAll(strings.ReplaceAll(content, "\r\n", "\n"), "\r", "\n")
	normalized = strings.Trim(normalized, "\n")
	if normalized == "" {
		return []string{""}
	}
	rawLines := strings.Split(normalized, "\n")
	lines := make([]string, 0, len(rawLines))
	blankSeen := false
	for _, line := range rawLines {
		if strings.TrimSpace(line) == "" {
			if blankSeen {
				continue
			}
			lines = append(lines, "")
			blankSeen = true
			continue
		}
		lines = append(lines, line)
		blankSeen = false
	}
	return lines
}

func enableColor() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("MEMO_NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
