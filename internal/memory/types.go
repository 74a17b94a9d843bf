package memory

import "errors"

// ErrNotFound is returned when a delete targets an id that is not stored.
var ErrNotFound = errors.New("memory item not found")

// Todo 待办事项：标题即用户原文，创建后不再修改
// Todo is an actionable task. Title is the verbatim user text and never changes.
type Todo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"`
}

// Idea 灵感/细节，可按标题关联一个待办
// Idea is an auxiliary note, optionally linked to a todo by title.
type Idea struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	// RelatedTodo 是分类器给出的待办标题（按值引用，可能失效）
	// RelatedTodo is the todo title proposed by the classifier; a by-value
	// reference that may dangle.
	RelatedTodo *string `json:"relatedTodo"`
	// RelatedTodoID pins the link to the todo whose title matched at intake.
	RelatedTodoID *int64 `json:"relatedTodoId,omitempty"`
	Time          string `json:"time"`
}

// State is the full persisted memory.
type State struct {
	Todos []Todo `json:"todos"`
	Ideas []Idea `json:"ideas"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Todos: append([]Todo{}, s.Todos...),
		Ideas: make([]Idea, 0, len(s.Ideas)),
	}
	for _, idea := range s.Ideas {
		out.Ideas = append(out.Ideas, idea.clone())
	}
	return out
}

// Count returns the total number of stored items.
func (s State) Count() int {
	return len(s.Todos) + len(s.Ideas)
}

func (i Idea) clone() Idea {
	out := i
	if i.RelatedTodo != nil {
		title := *i.RelatedTodo
		out.RelatedTodo = &title
	}
	if i.RelatedTodoID != nil {
		id := *i.RelatedTodoID
		out.RelatedTodoID = &id
	}
	return out
}

// Related returns the related todo title, or "" when the idea is unlinked.
func (i Idea) Related() string {
	if i.RelatedTodo == nil {
		return ""
	}
	return *i.RelatedTodo
}
