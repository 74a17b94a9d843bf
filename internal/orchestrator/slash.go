package orchestrator

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"memo/internal/memory"
)

// ErrExit is returned by RunInput for /exit and /quit.
var ErrExit = errors.New("exit requested")

// parseSlashCommand 解析 "/" 命令：返回 command 与 args（剩余部分）
// parseSlashCommand parses a "/" command: returns command and args (rest of line)
func parseSlashCommand(input string) (command string, args string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "/"))
	if rest == "" {
		return "", "", true
	}
	parts := strings.SplitN(rest, " ", 2)
	command = strings.ToLower(strings.TrimSpace(parts[0]))
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args, true
}

// runSlashCommand 处理 "/" 内建命令；未知命令返回提示
// runSlashCommand handles "/" built-in commands; unknown command returns a hint
func (o *Orchestrator) runSlashCommand(ctx context.Context, command, args string, out io.Writer) (string, error) {
	t := o.lang.T
	switch command {
	case "", "help":
		return t("repl.help"), nil
	case "exit", "quit":
		return "", ErrExit
	case "todos":
		return FormatTodos(o.lang, o.snapshot().Todos), nil
	case "ideas":
		return FormatIdeas(o.lang, o.snapshot().Ideas), nil
	case "memory", "list":
		if o.store == nil {
			return t("memory.empty"), nil
		}
		return FormatMemory(o.lang, o.store.View()), nil
	case "delete-todo", "delete-idea":
		id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
		if err != nil {
			return t("repl.usage", "/"+command+" <id>"), nil
		}
		return o.deleteItem(command, id)
	case "clear":
		if o.store == nil {
			return t("memory.empty"), nil
		}
		ok := strings.EqualFold(args, "yes") || strings.EqualFold(args, "y")
		if !ok && o.onConfirm != nil {
			confirmed, err := o.onConfirm(ctx, t("memory.clear_confirm"))
			if err != nil {
				return "", err
			}
			ok = confirmed
		}
		if !ok {
			return t("memory.clear_aborted"), nil
		}
		o.store.Clear()
		return t("memory.cleared"), nil
	case "q", "quick":
		prompts := o.QuickPrompts()
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > len(prompts) {
			return t("repl.quick_invalid", len(prompts)), nil
		}
		prompt := prompts[n-1]
		reply, err := o.Submit(ctx, prompt)
		if err != nil {
			return "", err
		}
		if out != nil {
			RenderReply(out, o.lang, reply)
		}
		return "", nil
	case "model":
		return o.modelCommand(ctx, args), nil
	case "lang":
		locale := strings.TrimSpace(args)
		if locale == "" {
			return t("repl.usage", "/lang <en|zh-TW>"), nil
		}
		if err := o.SetLanguage(locale); err != nil {
			return "", err
		}
		return o.lang.T("repl.lang_switched", o.lang.Locale()), nil
	default:
		return t("repl.unknown_command", "/"+command), nil
	}
}

func (o *Orchestrator) snapshot() memory.State {
	if o.store == nil {
		return memory.State{}
	}
	return o.store.Snapshot()
}

func (o *Orchestrator) deleteItem(command string, id int64) (string, error) {
	t := o.lang.T
	if o.store == nil {
		return t("memory.not_found", id), nil
	}
	if command == "delete-todo" {
		todo, err := o.store.DeleteTodo(id)
		if errors.Is(err, memory.ErrNotFound) {
			return t("memory.not_found", id), nil
		}
		if err != nil {
			return "", err
		}
		return t("memory.deleted_todo", todo.Title), nil
	}
	idea, err := o.store.DeleteIdea(id)
	if errors.Is(err, memory.ErrNotFound) {
		return t("memory.not_found", id), nil
	}
	if err != nil {
		return "", err
	}
	return t("memory.deleted_idea", idea.Text), nil
}

// modelCommand shows, lists or switches the model. A switch is persisted
// through PersistModel when one is configured.
func (o *Orchestrator) modelCommand(ctx context.Context, args string) string {
	t := o.lang.T
	model := strings.TrimSpace(args)
	if model == "" {
		lines := []string{t("model.current", o.CurrentModel())}
		if o.provider != nil {
			if models, err := o.provider.ListModels(ctx); err == nil && len(models) > 0 {
				lines = append(lines, t("model.list"))
				for _, m := range models {
					lines = append(lines, "  "+m.ID)
				}
			}
		}
		return strings.Join(lines, "\n")
	}
	if err := o.SetModel(model); err != nil {
		return "Failed to set model: " + err.Error()
	}
	if o.persistModel != nil {
		if err := o.persistModel(model); err != nil {
			return t("model.switched", model) + " (config persist failed: " + err.Error() + ")"
		}
	}
	return t("model.switched", model)
}
