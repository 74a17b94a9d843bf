package storage

import (
	"encoding/json"
	"testing"
)

func openBackends(t *testing.T) map[string]KV {
	t.Helper()
	out := map[string]KV{}
	for _, backend := range []string{BackendFile, BackendSQLite, BackendBadger} {
		layout, err := NewLayout(t.TempDir())
		if err != nil {
			t.Fatalf("NewLayout: %v", err)
		}
		kv, err := Open(backend, layout)
		if err != nil {
			t.Fatalf("Open(%s): %v", backend, err)
		}
		t.Cleanup(func() { _ = kv.Close() })
		out[backend] = kv
	}
	return out
}

func TestKV_SetGetDelete(t *testing.T) {
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get(KeyTodos); err != nil || ok {
				t.Fatalf("Get on empty store ok=%v err=%v", ok, err)
			}
			if err := kv.Set(KeyTodos, []byte(`[{"id":1}]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set(KeyTodos, []byte(`[{"id":2}]`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, ok, err := kv.Get(KeyTodos)
			if err != nil || !ok {
				t.Fatalf("Get ok=%v err=%v", ok, err)
			}
			if string(got) != `[{"id":2}]` {
				t.Fatalf("Get=%s, want overwritten value", got)
			}
			if err := kv.Delete(KeyTodos); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := kv.Delete(KeyTodos); err != nil {
				t.Fatalf("Delete missing key should be a no-op: %v", err)
			}
			if _, ok, _ := kv.Get(KeyTodos); ok {
				t.Fatalf("key still present after Delete")
			}
		})
	}
}

func TestKV_KeysAreIndependent(t *testing.T) {
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_ = kv.Set(KeyTodos, []byte("todos"))
			_ = kv.Set(KeyIdeas, []byte("ideas"))
			todos, _, _ := kv.Get(KeyTodos)
			ideas, _, _ := kv.Get(KeyIdeas)
			if string(todos) != "todos" || string(ideas) != "ideas" {
				t.Fatalf("todos=%q ideas=%q", todos, ideas)
			}
		})
	}
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/memo.db"
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	if err := kv.Set(KeyIdeas, []byte("[]")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = kv.Close()

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got, ok, _ := reopened.Get(KeyIdeas); !ok || string(got) != "[]" {
		t.Fatalf("after reopen got=%q ok=%v", got, ok)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	layout, err := NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	if _, err := Open("redis", layout); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewLayout_EmptyDir(t *testing.T) {
	if _, err := NewLayout("  "); err == nil {
		t.Fatalf("expected error for empty base dir")
	}
}

func TestMigrateLegacyNotes(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	legacy := `[{"id":10,"text":"first note","time":"t1"},{"id":11,"text":"  ","time":"t2"},{"id":12,"text":"second","time":"t3"}]`
	if err := kv.Set(KeyLegacyNotes, []byte(legacy)); err != nil {
		t.Fatalf("Set legacy: %v", err)
	}

	n, err := MigrateLegacyNotes(kv)
	if err != nil {
		t.Fatalf("MigrateLegacyNotes: %v", err)
	}
	if n != 2 {
		t.Fatalf("migrated=%d, want 2", n)
	}
	raw, ok, _ := kv.Get(KeyIdeas)
	if !ok {
		t.Fatalf("ideas key not written")
	}
	var ideas []map[string]any
	if err := json.Unmarshal(raw, &ideas); err != nil {
		t.Fatalf("decode ideas: %v", err)
	}
	if len(ideas) != 2 || ideas[0]["text"] != "first note" || ideas[0]["relatedTodo"] != nil {
		t.Fatalf("unexpected ideas: %v", ideas)
	}
	if _, ok, _ := kv.Get(KeyLegacyNotes); !ok {
		t.Fatalf("legacy key should be kept")
	}

	// Second run is a no-op because ideas now exist.
	n, err = MigrateLegacyNotes(kv)
	if err != nil || n != 0 {
		t.Fatalf("second run n=%d err=%v", n, err)
	}
}

func TestMigrateLegacyNotes_NothingToDo(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	n, err := MigrateLegacyNotes(kv)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if _, ok, _ := kv.Get(KeyIdeas); ok {
		t.Fatalf("ideas should not be created without legacy notes")
	}
}

func TestMigrateLegacyNotes_CorruptLegacy(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	_ = kv.Set(KeyLegacyNotes, []byte("{not json"))
	if _, err := MigrateLegacyNotes(kv); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSQLiteKV_RecordsSchemaVersion(t *testing.T) {
	kv, err := NewSQLiteKV(t.TempDir() + "/memo.db")
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	defer kv.Close()
	var version int
	if err := kv.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != sqliteSchemaVersion {
		t.Fatalf("user_version=%d, want %d", version, sqliteSchemaVersion)
	}
	var mode string
	if err := kv.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode=%q, want wal", mode)
	}
}

func TestSQLiteKV_RejectsNewerSchema(t *testing.T) {
	path := t.TempDir() + "/memo.db"
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	if _, err := kv.db.Exec(`PRAGMA user_version = 99`); err != nil {
		t.Fatal(err)
	}
	_ = kv.Close()
	if _, err := NewSQLiteKV(path); err == nil {
		t.Fatal("expected error for a newer schema")
	}
}
