package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"memo/internal/export"
	"memo/internal/memory"
	"memo/internal/orchestrator"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	orch *orchestrator.Orchestrator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(orch *orchestrator.Orchestrator) *Handlers {
	return &Handlers{orch: orch}
}

// AddRequest represents the arguments for memo_add.
type AddRequest struct {
	Text string `json:"text"`
}

// ListRequest represents the arguments for memo_list.
type ListRequest struct {
	Format string `json:"format,omitempty"`
}

// DeleteRequest represents the arguments for memo_delete_todo and
// memo_delete_idea.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// AddOutput is the result of memo_add.
type AddOutput struct {
	Type   string       `json:"type"`
	Reply  string       `json:"reply"`
	Failed bool         `json:"failed,omitempty"`
	Todo   *memory.Todo `json:"todo,omitempty"`
	Idea   *memory.Idea `json:"idea,omitempty"`
}

// GroupOutput is one todo with its ideas in memo_list.
type GroupOutput struct {
	Todo  memory.Todo   `json:"todo"`
	Ideas []memory.Idea `json:"ideas"`
}

// ListOutput is the JSON shape of memo_list.
type ListOutput struct {
	Groups    []GroupOutput `json:"groups"`
	Ungrouped []memory.Idea `json:"ungrouped"`
	Count     int           `json:"count"`
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// Add runs one classification turn, exactly as if typed into the chat.
func (h *Handlers) Add(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[AddRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, err := h.orch.Submit(ctx, in.Text)
	switch {
	case errors.Is(err, orchestrator.ErrEmptyInput):
		return mcp.NewToolResultError("text cannot be empty"), nil
	case errors.Is(err, orchestrator.ErrBusy):
		return mcp.NewToolResultError("memo is busy with another message, try again"), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultJSON(AddOutput{
		Type:   string(reply.Type),
		Reply:  reply.Content,
		Failed: reply.Failed,
		Todo:   reply.Todo,
		Idea:   reply.Idea,
	})
}

// List returns the grouped memory view.
func (h *Handlers) List(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[ListRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	store := h.orch.Store()
	view := store.View()
	switch strings.ToLower(in.Format) {
	case "md", "markdown":
		return mcp.NewToolResultText(export.Markdown(h.orch.Lang(), view)), nil
	case "", "json":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (want json or md)", in.Format)), nil
	}

	out := ListOutput{
		Groups:    make([]GroupOutput, 0, len(view.Groups)),
		Ungrouped: append([]memory.Idea{}, view.Ungrouped...),
		Count:     store.Snapshot().Count(),
	}
	for _, g := range view.Groups {
		out.Groups = append(out.Groups, GroupOutput{Todo: g.Todo, Ideas: append([]memory.Idea{}, g.Ideas...)})
	}
	return mcp.NewToolResultJSON(out)
}

// DeleteTodo removes a todo; its ideas fall back to ungrouped.
func (h *Handlers) DeleteTodo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[DeleteRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	todo, err := h.orch.Store().DeleteTodo(in.ID)
	if err != nil {
		return notFound(in.ID, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted todo #%d: %s", todo.ID, todo.Title)), nil
}

// DeleteIdea removes an idea.
func (h *Handlers) DeleteIdea(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[DeleteRequest](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idea, err := h.orch.Store().DeleteIdea(in.ID)
	if err != nil {
		return notFound(in.ID, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted idea #%d: %s", idea.ID, idea.Text)), nil
}

func notFound(id int64, err error) *mcp.CallToolResult {
	if errors.Is(err, memory.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no item with id %d", id))
	}
	return mcp.NewToolResultError(err.Error())
}
