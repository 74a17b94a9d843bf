package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo/internal/i18n"
	"memo/internal/memory"
)

func sampleView() (memory.State, memory.View) {
	title := "buy milk"
	state := memory.State{
		Todos: []memory.Todo{{ID: 1, Title: title, Time: "10/16 09:00"}},
		Ideas: []memory.Idea{
			{ID: 2, Text: "oat *not* dairy", RelatedTodo: &title, Time: "10/16 09:05"},
			{ID: 3, Text: "<script>alert(1)</script>", Time: "10/16 09:10"},
		},
	}
	return state, memory.BuildView(state.Todos, state.Ideas)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatMarkdown, "markdown": FormatMarkdown, "HTML": FormatHTML, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestMarkdown_GroupedView(t *testing.T) {
	_, view := sampleView()
	got := Markdown(i18n.New("en"), view)
	assert.Contains(t, got, "# Memo Assistant\n")
	assert.Contains(t, got, "## Todos\n\n- [ ] buy milk _(10/16 09:00)_\n  - oat \\*not\\* dairy _(10/16 09:05)_\n")
	assert.Contains(t, got, "## Ungrouped ideas\n\n- \\<script\\>alert(1)\\</script\\> _(10/16 09:10)_\n")
}

func TestMarkdown_Empty(t *testing.T) {
	got := Markdown(i18n.New("en"), memory.View{})
	assert.Equal(t, "# Memo Assistant\n\n_No memos yet_\n", got)
}

func TestHTML_EscapesMemoText(t *testing.T) {
	_, view := sampleView()
	got, err := HTML(i18n.New("en"), view)
	require.NoError(t, err)
	assert.Contains(t, got, `<html lang="en">`)
	assert.Contains(t, got, "<title>Memo Assistant</title>")
	assert.Contains(t, got, `type="checkbox"`)
	assert.Contains(t, got, "&lt;script&gt;")
	assert.NotContains(t, got, "<script>")
}

func TestJSON_PersistedShape(t *testing.T) {
	state, _ := sampleView()
	data, err := JSON(state)
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded["todos"], 1)
	require.Len(t, decoded["ideas"], 2)
	assert.Equal(t, "buy milk", decoded["ideas"][0]["relatedTodo"])
	assert.Nil(t, decoded["ideas"][1]["relatedTodo"])

	empty, err := JSON(memory.State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"todos":[],"ideas":[]}`, string(empty))
}

func TestWrite_FromStore(t *testing.T) {
	store, err := memory.NewStore(nil)
	require.NoError(t, err)
	store.AddTodo("file taxes")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, i18n.New("en"), store))
	assert.Contains(t, buf.String(), "- [ ] file taxes")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, i18n.New("en"), store))
	assert.Contains(t, buf.String(), `"title": "file taxes"`)
}
