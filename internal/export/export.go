// Package export renders stored memos for use outside the assistant.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"memo/internal/i18n"
	"memo/internal/memory"
)

// Format 导出格式
// Format names an export encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts md, markdown, html and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want md, html or json)", s)
	}
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

// Markdown 按分组视图输出：待办为任务列表，其灵感缩进在下方
// Markdown renders the grouped view: todos as a task list with their ideas
// nested underneath, then the ungrouped ideas.
func Markdown(lang *i18n.I18n, view memory.View) string {
	var b strings.Builder
	b.WriteString("# " + lang.T("app.title") + "\n")

	if len(view.Groups) == 0 && len(view.Ungrouped) == 0 {
		b.WriteString("\n_" + lang.T("memory.empty") + "_\n")
		return b.String()
	}
	if len(view.Groups) > 0 {
		b.WriteString("\n## " + lang.T("memory.todos") + "\n\n")
		for _, g := range view.Groups {
			fmt.Fprintf(&b, "- [ ] %s _(%s)_\n", escapeMarkdown(g.Todo.Title), g.Todo.Time)
			for _, idea := range g.Ideas {
				fmt.Fprintf(&b, "  - %s _(%s)_\n", escapeMarkdown(idea.Text), idea.Time)
			}
		}
	}
	if len(view.Ungrouped) > 0 {
		b.WriteString("\n## " + lang.T("memory.ungrouped") + "\n\n")
		for _, idea := range view.Ungrouped {
			fmt.Fprintf(&b, "- %s _(%s)_\n", escapeMarkdown(idea.Text), idea.Time)
		}
	}
	return b.String()
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

// HTML converts the Markdown export into a standalone page. Raw HTML in
// memo text is never passed through.
func HTML(lang *i18n.I18n, view memory.View) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(lang, view)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Lang  string
		Title string
		Body  template.HTML
	}{
		Lang:  lang.Locale(),
		Title: lang.T("app.title"),
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out.String(), nil
}

// JSON returns the raw collections in their persisted shape.
func JSON(state memory.State) ([]byte, error) {
	if state.Todos == nil {
		state.Todos = []memory.Todo{}
	}
	if state.Ideas == nil {
		state.Ideas = []memory.Idea{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode memos: %w", err)
	}
	return append(data, '\n'), nil
}

// Write renders the store in format to w.
func Write(w io.Writer, format Format, lang *i18n.I18n, store *memory.Store) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatMarkdown:
		data = []byte(Markdown(lang, store.View()))
	case FormatHTML:
		var s string
		s, err = HTML(lang, store.View())
		data = []byte(s)
	case FormatJSON:
		data, err = JSON(store.Snapshot())
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
