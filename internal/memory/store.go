package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type touched uint8

const (
	touchTodos touched = 1 << iota
	touchIdeas
)

// Store 持有待办与灵感两个集合，所有修改都经过 commit
// Store owns the todo and idea collections. Every mutation goes through
// commit, which applies it under the lock and then hands the touched
// collections to the persister.
type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	ids       *IDGen
	now       func() time.Time
	format    func(time.Time) string
	log       *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeFormat sets how item timestamps are rendered.
func WithTimeFormat(format func(time.Time) string) Option {
	return func(s *Store) {
		if format != nil {
			s.format = format
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore 启动时加载一次持久化数据
// NewStore loads the persisted collections once.
func NewStore(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		now:       time.Now,
		format:    func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = NewIDGen(s.now)

	if p != nil {
		st, err := p.Load()
		if err != nil {
			return nil, fmt.Errorf("load memory: %w", err)
		}
		s.state = st
	}
	for _, t := range s.state.Todos {
		s.ids.Observe(t.ID)
	}
	for _, i := range s.state.Ideas {
		s.ids.Observe(i.ID)
	}
	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// View returns the grouped memory view of the current state.
func (s *Store) View() View {
	st := s.Snapshot()
	return BuildView(st.Todos, st.Ideas)
}

// AddTodo appends a todo whose title is text verbatim.
func (s *Store) AddTodo(text string) Todo {
	var created Todo
	s.commit("add_todo", func(st *State) touched {
		created = Todo{ID: s.ids.Next(), Title: text, Time: s.format(s.now())}
		st.Todos = append(st.Todos, created)
		return touchTodos
	})
	return created
}

// AddIdea appends an idea. relatedTodo is stored as given; a blank title is
// treated as no link. When the title currently matches a todo, that todo's id
// is pinned on the idea as well.
func (s *Store) AddIdea(text string, relatedTodo *string) Idea {
	var created Idea
	s.commit("add_idea", func(st *State) touched {
		created = Idea{ID: s.ids.Next(), Text: text, Time: s.format(s.now())}
		if relatedTodo != nil && strings.TrimSpace(*relatedTodo) != "" {
			title := *relatedTodo
			created.RelatedTodo = &title
			if todo, ok := ResolveTodo(st.Todos, title); ok {
				id := todo.ID
				created.RelatedTodoID = &id
			}
		}
		st.Ideas = append(st.Ideas, created.clone())
		return touchIdeas
	})
	return created
}

// DeleteTodo removes a todo and clears relatedTodo on every idea whose value
// equals the removed title.
func (s *Store) DeleteTodo(id int64) (Todo, error) {
	var removed Todo
	found := false
	s.commit("delete_todo", func(st *State) touched {
		idx := -1
		for i, t := range st.Todos {
			if t.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0
		}
		found = true
		removed = st.Todos[idx]
		st.Todos = append(st.Todos[:idx:idx], st.Todos[idx+1:]...)

		mask := touchTodos
		for i := range st.Ideas {
			if st.Ideas[i].RelatedTodo != nil && *st.Ideas[i].RelatedTodo == removed.Title {
				st.Ideas[i].RelatedTodo = nil
				st.Ideas[i].RelatedTodoID = nil
				mask |= touchIdeas
			}
		}
		return mask
	})
	if !found {
		return Todo{}, fmt.Errorf("delete todo %d: %w", id, ErrNotFound)
	}
	return removed, nil
}

// DeleteIdea removes one idea; nothing cascades.
func (s *Store) DeleteIdea(id int64) (Idea, error) {
	var removed Idea
	found := false
	s.commit("delete_idea", func(st *State) touched {
		for i, idea := range st.Ideas {
			if idea.ID == id {
				found = true
				removed = idea.clone()
				st.Ideas = append(st.Ideas[:i:i], st.Ideas[i+1:]...)
				return touchIdeas
			}
		}
		return 0
	})
	if !found {
		return Idea{}, fmt.Errorf("delete idea %d: %w", id, ErrNotFound)
	}
	return removed, nil
}

// Clear empties both collections.
func (s *Store) Clear() {
	s.commit("clear", func(st *State) touched {
		st.Todos = nil
		st.Ideas = nil
		return touchTodos | touchIdeas
	})
}

// commit 唯一的修改入口：加锁修改后持久化被触及的集合
// commit is the single mutation entry point. Persistence is best effort:
// failures are logged and never surfaced.
func (s *Store) commit(op string, mutate func(st *State) touched) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mask := mutate(&s.state)
	if mask == 0 || s.persister == nil {
		return
	}
	if mask&touchTodos != 0 {
		if err := s.persister.SaveTodos(append([]Todo(nil), s.state.Todos...)); err != nil {
			s.log.Warn("persist todos failed", zap.String("op", op), zap.Error(err))
		}
	}
	if mask&touchIdeas != 0 {
		ideas := make([]Idea, 0, len(s.state.Ideas))
		for _, idea := range s.state.Ideas {
			ideas = append(ideas, idea.clone())
		}
		if err := s.persister.SaveIdeas(ideas); err != nil {
			s.log.Warn("persist ideas failed", zap.String("op", op), zap.Error(err))
		}
	}
}
