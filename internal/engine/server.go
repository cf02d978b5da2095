package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "opencoach-reminder"
	serverVersion = "1.0.0"
)

// Server exposes the engine's operations as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	engine    *Engine
}

// NewServer creates a new MCP server backed by the given engine.
func NewServer(engine *Engine) *Server {
	s := &Server{
		engine: engine,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// run_extraction_cycle
	s.mcpServer.AddTool(
		mcp.NewTool("run_extraction_cycle",
			mcp.WithDescription("Re-extract reminders from the watched context document if it changed since the last run"),
		),
		s.handleRunExtractionCycle,
	)

	// check_due_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("check_due_reminders",
			mcp.WithDescription("Return reminders that are due now and mark them delivered (each reminder is returned at most once)"),
		),
		s.handleCheckDueReminders,
	)

	// acknowledge_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("acknowledge_reminders",
			mcp.WithDescription("Mark reminders as completed by their dateTime keys; already-completed keys are ignored"),
			mcp.WithString("date_times", mcp.Required(), mcp.Description(`JSON array of dateTime keys, e.g. ["2025-01-15T09:00:00Z"]`)),
		),
		s.handleAcknowledgeReminders,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all reminders in the store, pending and completed"),
		),
		s.handleListReminders,
	)
}

func (s *Server) handleRunExtractionCycle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.engine.RunExtractionCycle(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction cycle failed: %v", err)), nil
	}

	output, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleCheckDueReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	due, err := s.engine.RunDueCheck(ctx)
	if err != nil {
		// Due reminders are still reported even when persisting the
		// completed marks failed.
		if len(due) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("due check failed: %v", err)), nil
		}
	}

	if len(due) == 0 {
		return mcp.NewToolResultText("No due reminders."), nil
	}

	output, _ := json.MarshalIndent(due, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleAcknowledgeReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("date_times", "")
	if raw == "" {
		return mcp.NewToolResultError("date_times is required"), nil
	}

	var dateTimes []string
	if err := json.Unmarshal([]byte(raw), &dateTimes); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date_times (expected JSON array of strings): %v", err)), nil
	}

	marked, err := s.engine.Acknowledge(ctx, dateTimes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to acknowledge reminders: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`{"markedCount": %d}`, marked)), nil
}

func (s *Server) handleListReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.engine.Reminders(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	output, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
