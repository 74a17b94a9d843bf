package classify

import "strings"

// Route is the local, non-authoritative guess about a new input.
type Route string

const (
	// RouteIntake 新内容：上下文只带待办
	// RouteIntake is new content; the context carries todos only.
	RouteIntake Route = "intake"
	// RouteQuery 整理请求：上下文同时带上灵感
	// RouteQuery asks to review stored memory; the context carries ideas too.
	RouteQuery Route = "query"
)

// DefaultQueryPhrases are matched case-insensitively as substrings.
var DefaultQueryPhrases = []string{
	"still need to do",
	"what's left",
	"whats left",
	"organize",
	"organise",
	"priority",
	"priorities",
	"summarize",
	"summarise",
	"my todos",
	"any ideas",
	"還有什麼沒做",
	"还有什么没做",
	"整理",
	"優先",
	"优先",
	"我的待辦",
	"有什麼靈感",
}

// Router 本地关键字路由，只决定上下文是否包含灵感
// Router is the keyword stage. It only decides whether the outgoing context
// includes ideas; the remote classifier decides what gets stored.
type Router struct {
	phrases []string
}

// NewRouter builds a router. An empty phrase list selects the defaults.
func NewRouter(phrases []string) *Router {
	if len(phrases) == 0 {
		phrases = DefaultQueryPhrases
	}
	r := &Router{phrases: make([]string, 0, len(phrases))}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			r.phrases = append(r.phrases, p)
		}
	}
	return r
}

// Route returns RouteQuery when text contains any configured phrase.
func (r *Router) Route(text string) Route {
	lower := strings.ToLower(text)
	for _, p := range r.phrases {
		if strings.Contains(lower, p) {
			return RouteQuery
		}
	}
	return RouteIntake
}
