package chat

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 是发往模型或显示在会话记录中的一条消息
// Message is one chat turn, sent to the model or shown in the transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// Tag 是分类标签（todo/idea/query/error），只用于显示
	// Tag is the classification label (todo/idea/query/error), display only.
	Tag string `json:"tag,omitempty"`
}

// User builds a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant-role message with an optional tag.
func Assistant(content, tag string) Message {
	return Message{Role: RoleAssistant, Content: content, Tag: tag}
}

// StripTags returns a copy of messages without display tags, suitable for a
// provider request.
func StripTags(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	return out
}
