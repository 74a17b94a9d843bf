package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// isolate points HOME and the data dir at temp dirs and clears MEMO_* so no
// real config leaks into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"MEMO_CONFIG_PATH", "MEMO_PROVIDER", "MEMO_BASE_URL", "MEMO_MODEL", "MEMO_API_KEY",
		"MEMO_HISTORY", "MEMO_MAX_TOKENS",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("MEMO_HOME", t.TempDir())
	t.Setenv("MEMO_STORAGE", "file")
	t.Setenv("MEMO_LANG", "en")
	t.Setenv("NO_COLOR", "1")

	work := t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

// fakeOpenAI answers every chat completion with the next scripted content.
func fakeOpenAI(t *testing.T, contents ...string) {
	t.Helper()
	i := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") || i >= len(contents) {
			http.Error(w, `{"error":{"message":"unexpected","type":"invalid_request_error"}}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": contents[i]},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
		i++
	}))
	t.Cleanup(srv.Close)
	t.Setenv("MEMO_PROVIDER", "openai")
	t.Setenv("MEMO_BASE_URL", srv.URL)
	t.Setenv("MEMO_API_KEY", "sk-test")
}

func TestAddListAndDelete(t *testing.T) {
	isolate(t)
	fakeOpenAI(t,
		`{"type":"todo","reply":"Added to your list."}`,
		`{"type":"idea","relatedTodo":"buy milk","reply":"Filed under buy milk."}`,
	)

	out, err := run(t, "", "add", "buy", "milk")
	if err != nil {
		t.Fatalf("add todo: %v", err)
	}
	if !strings.Contains(out, "[TODO]") || !strings.Contains(out, "Added to your list.") {
		t.Fatalf("add output=%q", out)
	}
	if _, err := run(t, "", "add", "oat milk"); err != nil {
		t.Fatalf("add idea: %v", err)
	}

	out, err = run(t, "", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "buy milk") || !strings.Contains(out, "oat milk") {
		t.Fatalf("list output=%q", out)
	}

	out, err = run(t, "", "export", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var state struct {
		Todos []struct {
			ID int64 `json:"id"`
		} `json:"todos"`
	}
	if err := json.Unmarshal([]byte(out), &state); err != nil || len(state.Todos) != 1 {
		t.Fatalf("export=%q err=%v", out, err)
	}

	out, err = run(t, "", "delete-todo", "#"+strconv.FormatInt(state.Todos[0].ID, 10))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Deleted todo: buy milk") {
		t.Fatalf("delete output=%q", out)
	}
	out, err = run(t, "", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Ungrouped ideas") || !strings.Contains(out, "oat milk") || strings.Contains(out, "buy milk") {
		t.Fatalf("idea should survive as ungrouped: %q", out)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	isolate(t)
	if _, err := run(t, "", "delete-idea", "42"); err == nil || err.Error() != "No item with id 42" {
		t.Fatalf("err=%v", err)
	}
	if _, err := run(t, "", "delete-todo", "abc"); err == nil || !strings.Contains(err.Error(), "invalid id") {
		t.Fatalf("err=%v", err)
	}
}

func TestClearConfirmation(t *testing.T) {
	isolate(t)
	fakeOpenAI(t, `{"type":"todo","reply":"ok"}`)
	if _, err := run(t, "", "add", "water plants"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "n\n", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Nothing cleared") {
		t.Fatalf("declined clear output=%q", out)
	}

	out, err = run(t, "", "clear", "--yes")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "All memos cleared") {
		t.Fatalf("clear output=%q", out)
	}
	out, err = run(t, "", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No memos yet") {
		t.Fatalf("list after clear=%q", out)
	}
}

func TestExportFormats(t *testing.T) {
	isolate(t)
	fakeOpenAI(t, `{"type":"todo","reply":"ok"}`)
	if _, err := run(t, "", "add", "call the bank"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "export")
	if err != nil || !strings.Contains(out, "- [ ] call the bank") {
		t.Fatalf("md export err=%v out=%q", err, out)
	}
	out, err = run(t, "", "export", "--format", "json")
	if err != nil || !strings.Contains(out, `"title": "call the bank"`) {
		t.Fatalf("json export err=%v out=%q", err, out)
	}

	target := filepath.Join(t.TempDir(), "memo.html")
	if _, err := run(t, "", "export", "-f", "html", "-o", target); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil || !strings.Contains(string(data), "call the bank") {
		t.Fatalf("html export err=%v data=%s", err, data)
	}

	if _, err := run(t, "", "export", "--format", "pdf"); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestREPLFromPipe(t *testing.T) {
	isolate(t)
	fakeOpenAI(t, `{"type":"query","reply":"Nothing pending."}`)
	out, err := run(t, "what is left?\n/exit\n")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"smart memo assistant", "Nothing pending.", "Bye!"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInitWritesProjectConfig(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "init")
	if err != nil || !strings.Contains(out, "Created") {
		t.Fatalf("init: out=%q err=%v", out, err)
	}
	if _, err := os.Stat(filepath.Join(".memo", "config.json")); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "", "init")
	if err != nil || !strings.Contains(out, "already exists") {
		t.Fatalf("second init: out=%q err=%v", out, err)
	}
}
