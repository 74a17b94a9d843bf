package classify

import (
	"fmt"
	"strings"

	"memo/internal/memory"
)

// BuildContext renders the single user turn sent to the classifier: a
// snapshot of current todos, the ideas when route is RouteQuery, and the
// new input.
func BuildContext(route Route, text string, st memory.State) string {
	var b strings.Builder

	b.WriteString("[CURRENT TODOS]\n")
	if len(st.Todos) == 0 {
		b.WriteString("(none)\n")
	}
	for i, t := range st.Todos {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, t.Title, t.Time)
	}

	if route == RouteQuery {
		b.WriteString("\n[CURRENT IDEAS]\n")
		if len(st.Ideas) == 0 {
			b.WriteString("(none)\n")
		}
		for i, idea := range st.Ideas {
			fmt.Fprintf(&b, "%d. %s (%s)", i+1, idea.Text, idea.Time)
			if memory.IsUngrouped(idea, st.Todos) {
				b.WriteString("\n")
				continue
			}
			fmt.Fprintf(&b, " -> %s\n", idea.Related())
		}
	}

	b.WriteString("\n[NEW INPUT]\n")
	b.WriteString(text)
	return b.String()
}
