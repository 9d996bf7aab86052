// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server *server.MCPServer
	board  ports.BoardProvider
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new MCP server instance.
func NewServer(board ports.BoardProvider) *Server {
	s := &Server{
		board: board,
	}

	s.server = server.NewMCPServer(
		"flowboard",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_board",
			mcp.WithDescription("Get the Kanban board: tasks grouped into todo, in-progress and complete columns"),
			mcp.WithString(
				"type",
				mcp.Description("Optional task type to narrow the board to"),
				mcp.Enum(string(domain.TypeProject), string(domain.TypeDaily)),
			),
		),
		s.handleGetBoard,
	)

	listTasksTool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks oldest first, optionally filtered by status and type"),
		mcp.WithString(
			"status",
			mcp.Description("Filter tasks by status"),
			mcp.Enum(string(domain.StatusTodo), string(domain.StatusInProgress), string(domain.StatusComplete)),
		),
		mcp.WithString(
			"type",
			mcp.Description("Filter tasks by type"),
			mcp.Enum(string(domain.TypeProject), string(domain.TypeDaily)),
		),
	)
	s.server.AddTool(listTasksTool, s.handleListTasks)

	searchTasksTool := mcp.NewTool(
		"search_tasks",
		mcp.WithDescription("Fuzzy search task titles, best match first"),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("Characters to match against task titles"),
		),
	)
	s.server.AddTool(searchTasksTool, s.handleSearchTasks)

	createTaskTool := mcp.NewTool(
		"create_task",
		mcp.WithDescription("Create a new todo task"),
		mcp.WithString(
			"title",
			mcp.Required(),
			mcp.Description("The title of the task"),
		),
		mcp.WithNumber(
			"focus_time",
			mcp.Description("Focus minutes: 15, 30, 45, 60, 90 or 120 (default: 30)"),
		),
		mcp.WithString(
			"energy_level",
			mcp.Description("Energy the task needs (default: Medium)"),
			mcp.Enum(string(domain.EnergyHigh), string(domain.EnergyMedium), string(domain.EnergyLow)),
		),
		mcp.WithString(
			"type",
			mcp.Description("Task type (default: project)"),
			mcp.Enum(string(domain.TypeProject), string(domain.TypeDaily)),
		),
	)
	s.server.AddTool(createTaskTool, s.handleCreateTask)

	advanceTaskTool := mcp.NewTool(
		"advance_task",
		mcp.WithDescription("Move a task to the next status: todo → in-progress → complete → todo"),
		mcp.WithString(
			"task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to advance"),
		),
	)
	s.server.AddTool(advanceTaskTool, s.handleAdvanceTask)

	deleteTaskTool := mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task"),
		mcp.WithString(
			"task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)
	s.server.AddTool(deleteTaskTool, s.handleDeleteTask)
}

// Start serves MCP requests over stdio until ctx is cancelled or stdin closes.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	stdio := server.NewStdioServer(s.server)
	err := stdio.Listen(s.ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// handleGetBoard handles the get_board tool.
func (s *Server) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskType, err := optionalType(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tasks, err := s.board.ListTasks(ctx, domain.TaskFilter{Type: taskType})
	if err != nil {
		return toolError("failed to load board", err)
	}

	columns := make(map[string]any, len(domain.ValidStatuses))
	for _, status := range domain.ValidStatuses {
		column := domain.FilterTasks(tasks, domain.TaskFilter{Status: status})
		columns[string(status)] = map[string]any{
			"count": len(column),
			"tasks": nonNil(column),
		}
	}

	result := map[string]any{
		"user_id":     s.board.UserID(),
		"columns":     columns,
		"total_count": len(tasks),
	}
	if taskType != "" {
		result["filter_type"] = string(taskType)
	}

	return jsonResult(result)
}

// handleListTasks handles the list_tasks tool.
func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter domain.TaskFilter
	if raw := request.GetString("status", ""); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter.Status = status
	}
	taskType, err := optionalType(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter.Type = taskType

	tasks, err := s.board.ListTasks(ctx, filter)
	if err != nil {
		return toolError("failed to list tasks", err)
	}

	result := map[string]any{
		"tasks":       nonNil(tasks),
		"total_count": len(tasks),
	}
	if filter.Status != "" {
		result["filter_status"] = string(filter.Status)
	}
	if filter.Type != "" {
		result["filter_type"] = string(filter.Type)
	}

	return jsonResult(result)
}

// handleSearchTasks handles the search_tasks tool.
func (s *Server) handleSearchTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required: " + err.Error()), nil
	}

	tasks, err := s.board.SearchTasks(ctx, query)
	if err != nil {
		return toolError("failed to search tasks", err)
	}

	return jsonResult(map[string]any{
		"query":       query,
		"tasks":       nonNil(tasks),
		"total_count": len(tasks),
	})
}

// handleCreateTask handles the create_task tool.
func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}

	focusTime := int(request.GetFloat("focus_time", 30))

	energy, err := domain.ParseEnergyLevel(request.GetString("energy_level", string(domain.EnergyMedium)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskType, err := domain.ParseTaskType(request.GetString("type", string(domain.TypeProject)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := s.board.CreateTask(ctx, title, focusTime, energy, taskType)
	if err != nil {
		return toolError("failed to create task", err)
	}

	return jsonResult(task)
}

// handleAdvanceTask handles the advance_task tool.
func (s *Server) handleAdvanceTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}

	task, err := s.board.AdvanceTask(ctx, taskID)
	if err != nil {
		return toolError("failed to advance task", err)
	}

	return jsonResult(task)
}

// handleDeleteTask handles the delete_task tool.
func (s *Server) handleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}

	if err := s.board.DeleteTask(ctx, taskID); err != nil {
		return toolError("failed to delete task", err)
	}

	return jsonResult(map[string]any{
		"task_id": taskID,
		"deleted": true,
	})
}

func optionalType(request mcp.CallToolRequest) (domain.TaskType, error) {
	raw := request.GetString("type", "")
	if raw == "" {
		return "", nil
	}
	return domain.ParseTaskType(raw)
}

// toolError reports domain refusals to the client and fails the call otherwise.
func toolError(msg string, err error) (*mcp.CallToolResult, error) {
	for _, known := range []error{
		domain.ErrTaskNotFound,
		domain.ErrEmptyTaskTitle,
		domain.ErrInvalidFocusTime,
		domain.ErrInvalidEnergyLevel,
		domain.ErrInvalidTaskType,
		domain.ErrInvalidStatus,
		domain.ErrInvalidTransition,
		domain.ErrTaskComplete,
		domain.ErrStoreNotConfigured,
	} {
		if errors.Is(err, known) {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err)), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", msg, err)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func nonNil(tasks []*domain.Task) []*domain.Task {
	if tasks == nil {
		return []*domain.Task{}
	}
	return tasks
}
