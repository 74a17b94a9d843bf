package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"memo/internal/i18n"
	"memo/internal/memory"
)

func TestRenderMarkdown(t *testing.T) {
	result := RenderMarkdown("# Hello\n\nThis is **bold**", 80)
	if result == "" {
		t.Fatal("RenderMarkdown returned empty string")
	}
	if !strings.Contains(result, "Hello") {
		t.Fatalf("rendered output lost heading text: %q", result)
	}
}

func TestRenderMarkdown_Blank(t *testing.T) {
	if got := RenderMarkdown("  \n", 80); got != "" {
		t.Fatalf("blank content should render empty, got %q", got)
	}
}

func TestMemoryRows_GroupsThenUngrouped(t *testing.T) {
	title := "buy milk"
	missing := "gone"
	view := memory.BuildView(
		[]memory.Todo{{ID: 1, Title: title, Time: "t1"}},
		[]memory.Idea{
			{ID: 2, Text: "oat milk", RelatedTodo: &title, Time: "t2"},
			{ID: 3, Text: "dangling", RelatedTodo: &missing, Time: "t3"},
		},
	)
	rows := memoryRows(i18n.New("en"), view)
	want := []struct {
		kind rowKind
		text string
	}{
		{rowSection, "Todos"},
		{rowTodo, "buy milk"},
		{rowIdea, "oat milk"},
		{rowSection, "Ungrouped ideas"},
		{rowIdea, "dangling"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows=%+v", rows)
	}
	for i, w := range want {
		if rows[i].kind != w.kind || rows[i].text != w.text {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], w)
		}
	}
	if !rows[2].nested || rows[4].nested {
		t.Fatal("only grouped ideas are nested")
	}
}

func TestRenderRow_TruncatesWideText(t *testing.T) {
	row := memoryRow{kind: rowTodo, id: 1, text: strings.Repeat("準備會議資料", 20), time: "10/16 09:00"}
	got := renderRow(DarkTheme(), row, false, 40)
	if !strings.Contains(got, "…") {
		t.Fatalf("expected truncation marker: %q", got)
	}
	if w := runewidth.StringWidth(got); w > 44 {
		t.Fatalf("row too wide: %d", w)
	}
}
