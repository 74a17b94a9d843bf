package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fixed keys of the persisted collections.
const (
	KeyTodos = "memo.todos"
	KeyIdeas = "memo.ideas"
	// KeyLegacyNotes 旧版单列表备忘，只在迁移时读取
	// KeyLegacyNotes holds notes from the single-list variant; read only by migration.
	KeyLegacyNotes = "smart-memo-notes"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// KV 持久化键值接口，支持多后端 (JSON 文件 / SQLite / Badger)
// KV is the durable key-value interface shared by all backends.
type KV interface {
	// Get returns the stored bytes and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Layout 存储目录布局
// Layout is the on-disk directory layout under the storage base dir.
type Layout struct {
	BaseDir string
	DataDir string
	LogsDir string
}

// NewLayout creates the base, data and logs directories.
func NewLayout(baseDir string) (Layout, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return Layout{}, fmt.Errorf("storage base dir is empty")
	}
	l := Layout{
		BaseDir: baseDir,
		DataDir: filepath.Join(baseDir, "data"),
		LogsDir: filepath.Join(baseDir, "logs"),
	}
	for _, dir := range []string{l.BaseDir, l.DataDir, l.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Layout{}, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return l, nil
}

// Open 按后端名打开键值存储
// Open opens the named backend inside the layout's data directory.
func Open(backend string, layout Layout) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileKV(filepath.Join(layout.DataDir, "kv"))
	case BackendSQLite:
		return NewSQLiteKV(filepath.Join(layout.DataDir, "memo.db"))
	case BackendBadger:
		return NewBadgerKV(filepath.Join(layout.DataDir, "badger"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
