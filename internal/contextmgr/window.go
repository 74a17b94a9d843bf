package contextmgr

import "memo/internal/chat"

// Counter counts tokens for a message list.
type Counter interface {
	Count(messages []chat.Message) int
}

// Window 按 token 预算截取最近的对话
// Window keeps the newest part of a conversation that fits a token budget.
type Window struct {
	Counter Counter
	Budget  int
}

// Trim returns the longest suffix of history whose token count fits the
// budget. The final message is always kept, and the result never starts
// with an assistant turn. A non-positive budget disables trimming.
func (w Window) Trim(history []chat.Message) []chat.Message {
	if len(history) == 0 {
		return nil
	}
	start := 0
	if w.Budget > 0 && w.Counter != nil {
		used := 0
		start = len(history)
		for i := len(history) - 1; i >= 0; i-- {
			cost := w.Counter.Count(history[i : i+1])
			if i < len(history)-1 && used+cost > w.Budget {
				break
			}
			used += cost
			start = i
		}
	}
	for start < len(history)-1 && history[start].Role != chat.RoleUser {
		start++
	}
	return append([]chat.Message(nil), history[start:]...)
}
