package memory

// ResolveTodo returns the first todo whose title equals title exactly.
// No trimming or case folding is applied.
func ResolveTodo(todos []Todo, title string) (Todo, bool) {
	for _, t := range todos {
		if t.Title == title {
			return t, true
		}
	}
	return Todo{}, false
}

// IsUngrouped reports whether no current todo title equals the idea's
// relatedTodo. Unlinked ideas are always ungrouped.
func IsUngrouped(idea Idea, todos []Todo) bool {
	if idea.RelatedTodo == nil {
		return true
	}
	_, ok := ResolveTodo(todos, *idea.RelatedTodo)
	return !ok
}

// Group is one todo together with the ideas linked to it.
type Group struct {
	Todo  Todo
	Ideas []Idea
}

// View is the memory tab: todos with their ideas, plus the ungrouped bucket.
// Groups and ungrouped ideas are newest first; ideas inside a group keep
// insertion order.
type View struct {
	Groups    []Group
	Ungrouped []Idea
}

// BuildView derives the grouped view at read time. Dangling relatedTodo
// values land in Ungrouped. When several todos share a title, an idea pinned
// by RelatedTodoID to one of them is shown only under that todo.
func BuildView(todos []Todo, ideas []Idea) View {
	groups := make([]Group, len(todos))
	index := make(map[int64]int, len(todos))
	byTitle := make(map[string][]int, len(todos))
	for i, t := range todos {
		groups[i] = Group{Todo: t}
		index[t.ID] = i
		byTitle[t.Title] = append(byTitle[t.Title], i)
	}

	var ungrouped []Idea
	for _, idea := range ideas {
		if idea.RelatedTodo == nil {
			ungrouped = append(ungrouped, idea)
			continue
		}
		matches := byTitle[*idea.RelatedTodo]
		if len(matches) == 0 {
			ungrouped = append(ungrouped, idea)
			continue
		}
		if idea.RelatedTodoID != nil {
			if pos, ok := index[*idea.RelatedTodoID]; ok && groups[pos].Todo.Title == *idea.RelatedTodo {
				groups[pos].Ideas = append(groups[pos].Ideas, idea)
				continue
			}
		}
		for _, pos := range matches {
			groups[pos].Ideas = append(groups[pos].Ideas, idea)
		}
	}

	view := View{Groups: make([]Group, 0, len(groups))}
	for i := len(groups) - 1; i >= 0; i-- {
		view.Groups = append(view.Groups, groups[i])
	}
	for i := len(ungrouped) - 1; i >= 0; i-- {
		view.Ungrouped = append(view.Ungrouped, ungrouped[i])
	}
	return view
}
