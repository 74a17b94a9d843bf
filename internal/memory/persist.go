package memory

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"memo/internal/storage"
)

// Persister is the persistence adapter the store calls after every committed
// transition. Todos and ideas are saved independently.
type Persister interface {
	Load() (State, error)
	SaveTodos(todos []Todo) error
	SaveIdeas(ideas []Idea) error
}

// KVPersister 将两个集合分别序列化为 JSON 存入键值存储
// KVPersister stores the two collections as JSON arrays under fixed keys.
type KVPersister struct {
	kv  storage.KV
	log *zap.Logger
}

func NewKVPersister(kv storage.KV, log *zap.Logger) *KVPersister {
	if log == nil {
		log = zap.NewNop()
	}
	return &KVPersister{kv: kv, log: log}
}

// Load reads both keys. A value that does not decode is treated as empty so a
// corrupt entry never blocks startup.
func (p *KVPersister) Load() (State, error) {
	todos, err := loadList[Todo](p, storage.KeyTodos)
	if err != nil {
		return State{}, err
	}
	ideas, err := loadList[Idea](p, storage.KeyIdeas)
	if err != nil {
		return State{}, err
	}
	return State{Todos: todos, Ideas: ideas}, nil
}

func loadList[T any](p *KVPersister, key string) ([]T, error) {
	raw, ok, err := p.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		p.log.Warn("discarding unreadable collection", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return out, nil
}

func (p *KVPersister) SaveTodos(todos []Todo) error {
	if todos == nil {
		todos = []Todo{}
	}
	return p.save(storage.KeyTodos, todos)
}

func (p *KVPersister) SaveIdeas(ideas []Idea) error {
	if ideas == nil {
		ideas = []Idea{}
	}
	return p.save(storage.KeyIdeas, ideas)
}

func (p *KVPersister) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := p.kv.Set(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
