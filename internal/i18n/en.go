package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// App header
	"app.title":   "Memo Assistant",
	"app.tagline": "SMART MEMO",
	"app.count":   "%d items",
	"app.welcome": "Hi! I'm your smart memo assistant 👋\nDrop any work detail, todo or idea on me. When you need a summary, just ask \"What's still left to do?\"",

	// UI - Tabs
	"tab.chat":   "Chat",
	"tab.memory": "Memory",

	// UI - Status bar
	"status.ready":    "Ready",
	"status.thinking": "Thinking…",
	"status.busy":     "Still working on the previous message",

	// UI - Input
	"input.placeholder": "Type a todo, idea or detail…",

	// UI - Keybindings (TUI)
	"keys.tab":    "tab switch",
	"keys.send":   "enter send",
	"keys.quick":  "alt+1-3 quick prompt",
	"keys.nav":    "↑/↓ select",
	"keys.delete": "d delete",
	"keys.clear":  "C clear all",
	"keys.quit":   "ctrl+c quit",

	// Quick prompts
	"quick.1": "What's still left to do?",
	"quick.2": "Sort by priority",
	"quick.3": "Any ideas so far?",

	// Memory tab
	"memory.empty":         "No memos yet",
	"memory.todos":         "Todos",
	"memory.ideas":         "Ideas",
	"memory.ungrouped":     "Ungrouped ideas",
	"memory.clear_all":     "Clear all",
	"memory.clear_confirm": "Clear all memos? [y/N]",
	"memory.cleared":       "All memos cleared",
	"memory.clear_aborted": "Nothing cleared",
	"memory.deleted_todo":  "Deleted todo: %s",
	"memory.deleted_idea":  "Deleted idea: %s",
	"memory.not_found":     "No item with id %d",

	// Classification tags
	"tag.todo":  "todo",
	"tag.idea":  "idea",
	"tag.query": "query",
	"tag.error": "error",

	// Errors
	"error.transport":   "Connection failed: %s",
	"error.remote":      "Error: %s",
	"error.empty_reply": "Sorry, something went wrong.",
	"error.busy":        "Please wait for the current reply.",
	"error.key_set":     "API key: set (length %d)",
	"error.key_unset":   "API key: not set",

	// Model
	"model.current":  "Current model: %s",
	"model.switched": "Model switched to: %s",
	"model.list":     "Available models:",

	// REPL
	"repl.help": `Commands:
  /todos               list todos
  /ideas               list ideas
  /memory              grouped memory view
  /delete-todo <id>    delete a todo (clears links from its ideas)
  /delete-idea <id>    delete an idea
  /clear               clear all memos
  /q <1-3>             send a quick prompt
  /model [name]        show, list or switch the model
  /lang <en|zh-TW>     switch the interface language
  /help                show this help
  /exit                quit`,
	"repl.unknown_command": "Unknown command: %s (try /help)",
	"repl.usage":           "Usage: %s",
	"repl.quick_invalid":   "Quick prompt must be 1-%d",
	"repl.lang_switched":   "Language: %s",
	"repl.bye":             "Bye!",

	// Startup
	"startup.migrated":  "Imported %d legacy notes as ideas",
	"startup.repl_mode": "Running in line mode",
}
