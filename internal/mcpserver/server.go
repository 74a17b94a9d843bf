// Package mcpserver exposes the memo over the Model Context Protocol so
// another agent can feed and read it through stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memo/internal/orchestrator"
)

// NewServer creates an MCP server with the memo tools registered.
func NewServer(orch *orchestrator.Orchestrator, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"memo",
		version,
		server.WithToolCapabilities(true),
	)
	h := NewHandlers(orch)

	s.AddTool(mcp.NewTool("memo_add",
		mcp.WithDescription("Sends a message to the memo assistant. It is classified as a todo, an idea or a query and stored accordingly; the assistant's reply is returned."),
		mcp.WithString("text", mcp.Required(), mcp.Description("What the user said, verbatim")),
	), h.Add)

	s.AddTool(mcp.NewTool("memo_list",
		mcp.WithDescription("Lists stored todos and ideas, grouped by todo."),
		mcp.WithString("format", mcp.Description("json (default) or md")),
	), h.List)

	s.AddTool(mcp.NewTool("memo_delete_todo",
		mcp.WithDescription("Deletes a todo by id. Ideas linked to it become ungrouped."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo id as shown by memo_list")),
	), h.DeleteTodo)

	s.AddTool(mcp.NewTool("memo_delete_idea",
		mcp.WithDescription("Deletes an idea by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Idea id as shown by memo_list")),
	), h.DeleteIdea)

	return s
}

// Run serves the memo tools over stdio until stdin closes.
func Run(orch *orchestrator.Orchestrator, version string) error {
	return server.ServeStdio(NewServer(orch, version))
}
