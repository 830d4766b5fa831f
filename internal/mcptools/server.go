// Package mcptools exposes the study dashboard as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/studydash/internal/dashboard"
	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/notify"
	"github.com/notexe/studydash/internal/store"
)

const (
	serverName    = "studydash"
	serverVersion = "1.0.0"
)

// Server is the MCP server for one user's dashboard.
type Server struct {
	mcpServer *server.MCPServer
	store     *store.Store
	dash      *dashboard.Service
	window    time.Duration
}

// NewServer creates the MCP server. window is the deadline check horizon.
func NewServer(st *store.Store, dash *dashboard.Service, window time.Duration) *Server {
	s := &Server{
		store:  st,
		dash:   dash,
		window: window,
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

func (s *Server) user() string { return s.dash.User().ID }

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_dashboard",
			mcp.WithDescription("Get the study dashboard: streak, weekly sessions, focus minutes today, task breakdown, due counts, 7-day productivity, upcoming tasks, recent activity and unread notifications"),
		),
		s.handleGetDashboard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_task",
			mcp.WithDescription("Add a task with an optional due date, priority and category"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("due_date", mcp.Description("Due date in RFC3339 format (e.g. 2025-01-15T09:00:00Z)")),
			mcp.WithString("priority", mcp.Description("Priority: low, medium, high (default: medium)")),
			mcp.WithString("category", mcp.Description("Category, e.g. a subject name")),
		),
		s.handleAddTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List tasks ordered by due date, optionally filtered by status"),
			mcp.WithString("status", mcp.Description("Filter by status: incomplete, completed, or empty for all")),
		),
		s.handleListTasks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_task",
			mcp.WithDescription("Mark a task as completed"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
		),
		s.handleCompleteTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_task",
			mcp.WithDescription("Update a task's fields (title, due_date, priority, category)"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("due_date", mcp.Description("New due date in RFC3339 format, or \"none\" to clear it")),
			mcp.WithString("priority", mcp.Description("New priority: low, medium, high")),
			mcp.WithString("category", mcp.Description("New category")),
		),
		s.handleUpdateTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_task",
			mcp.WithDescription("Delete a task permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
		),
		s.handleDeleteTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("log_study_session",
			mcp.WithDescription("Record a finished study session"),
			mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Session length in minutes")),
			mcp.WithString("start_time", mcp.Description("Start time in RFC3339 format (default: minutes before now)")),
		),
		s.handleLogStudySession,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Add a markdown note"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
			mcp.WithString("content", mcp.Description("Markdown content")),
			mcp.WithString("category", mcp.Description("Category")),
		),
		s.handleAddNote,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List notes, most recently updated first"),
			mcp.WithString("category", mcp.Description("Only notes in this category")),
			mcp.WithString("search", mcp.Description("Text to find in title or content")),
		),
		s.handleListNotes,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_event",
			mcp.WithDescription("Add a calendar event"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Event title")),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("Start in RFC3339 format")),
			mcp.WithString("end_date", mcp.Description("End in RFC3339 format (default: start)")),
			mcp.WithString("description", mcp.Description("Description")),
			mcp.WithString("category", mcp.Description("Category (default: personal)")),
			mcp.WithNumber("reminder_time", mcp.Description("Minutes before start to remind (default: 15)")),
			mcp.WithBoolean("all_day", mcp.Description("All-day event")),
		),
		s.handleAddEvent,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_events",
			mcp.WithDescription("List events starting within the next days"),
			mcp.WithNumber("days", mcp.Description("How many days ahead (default: 7)")),
		),
		s.handleListEvents,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_notifications",
			mcp.WithDescription("List notifications, newest first"),
			mcp.WithString("filter", mcp.Description("all, unread or read (default: all)")),
			mcp.WithString("search", mcp.Description("Text to find in title or message")),
		),
		s.handleListNotifications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("mark_notification_read",
			mcp.WithDescription("Mark one notification, or all with id \"all\", as read"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Notification ID or \"all\"")),
		),
		s.handleMarkNotificationRead,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("check_deadlines",
			mcp.WithDescription("Create notifications for tasks and events due soon and overdue tasks; returns the new ones"),
		),
		s.handleCheckDeadlines,
	)
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}

func parseTime(name, value string) (time.Time, *mcp.CallToolResult) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, mcp.NewToolResultError(fmt.Sprintf("invalid %s format: %v (use RFC3339, e.g. 2025-01-15T09:00:00Z)", name, err))
	}
	return t, nil
}

type dashboardView struct {
	dashboard.Summary
	Errors []string `json:"errors,omitempty"`
}

func (s *Server) handleGetDashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum := s.dash.Summary(ctx)
	view := dashboardView{Summary: sum}
	for _, e := range sum.Errors {
		view.Errors = append(view.Errors, e.Error())
	}
	return jsonResult(view), nil
}

func (s *Server) handleAddTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := store.NewTask{
		Title:    req.GetString("title", ""),
		Priority: model.Priority(strings.ToLower(req.GetString("priority", ""))),
		Category: req.GetString("category", ""),
	}
	if strings.TrimSpace(in.Title) == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	if v := req.GetString("due_date", ""); v != "" {
		due, errResult := parseTime("due_date", v)
		if errResult != nil {
			return errResult, nil
		}
		in.DueDate = &due
	}

	task, err := s.store.CreateTask(ctx, s.user(), in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add task: %v", err)), nil
	}
	return jsonResult(task), nil
}

func (s *Server) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := store.TaskFilter{Status: model.TaskStatus(strings.ToLower(req.GetString("status", "")))}
	tasks, err := s.store.ListTasks(ctx, s.user(), f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
	}
	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks found."), nil
	}
	return jsonResult(tasks), nil
}

func (s *Server) handleCompleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	task, err := s.dash.CompleteTask(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete task: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %q marked as completed.", task.Title)), nil
}

func (s *Server) handleUpdateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	args := req.GetArguments()

	var u store.TaskUpdate
	if v, ok := args["title"].(string); ok {
		u.Title = &v
	}
	if v, ok := args["category"].(string); ok {
		u.Category = &v
	}
	if v, ok := args["priority"].(string); ok {
		p := model.Priority(strings.ToLower(v))
		u.Priority = &p
	}
	if v, ok := args["due_date"].(string); ok {
		if v == "" || v == "none" {
			u.ClearDue = true
		} else {
			due, errResult := parseTime("due_date", v)
			if errResult != nil {
				return errResult, nil
			}
			u.DueDate = &due
		}
	}

	task, err := s.store.UpdateTask(ctx, s.user(), id, u)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}
	return jsonResult(task), nil
}

func (s *Server) handleDeleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := s.store.DeleteTask(ctx, s.user(), id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted.", id)), nil
}

func (s *Server) handleLogStudySession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes := req.GetFloat("minutes", -1)
	if minutes <= 0 {
		return mcp.NewToolResultError("minutes is required and must be positive"), nil
	}
	length := time.Duration(minutes * float64(time.Minute))

	start := s.dash.Now().Add(-length)
	if v := req.GetString("start_time", ""); v != "" {
		t, errResult := parseTime("start_time", v)
		if errResult != nil {
			return errResult, nil
		}
		start = t
	}
	end := start.Add(length)

	session, err := s.store.CreateStudySession(ctx, s.user(), store.NewStudySession{
		StartTime: start,
		EndTime:   &end,
		Duration:  &minutes,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log session: %v", err)), nil
	}
	return jsonResult(session), nil
}

func (s *Server) handleAddNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := s.store.CreateNote(ctx, s.user(), store.NewNote{
		Title:    req.GetString("title", ""),
		Content:  req.GetString("content", ""),
		Category: req.GetString("category", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add note: %v", err)), nil
	}
	return jsonResult(note), nil
}

func (s *Server) handleListNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.store.ListNotes(ctx, s.user(), store.NoteFilter{
		Category: req.GetString("category", ""),
		Search:   req.GetString("search", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes found."), nil
	}
	return jsonResult(notes), nil
}

func (s *Server) handleAddEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, errResult := parseTime("start_date", req.GetString("start_date", ""))
	if errResult != nil {
		return errResult, nil
	}
	in := store.NewEvent{
		Title:        req.GetString("title", ""),
		Description:  req.GetString("description", ""),
		StartDate:    start,
		Category:     req.GetString("category", ""),
		ReminderTime: int(req.GetFloat("reminder_time", 0)),
		IsAllDay:     req.GetBool("all_day", false),
	}
	if v := req.GetString("end_date", ""); v != "" {
		end, errResult := parseTime("end_date", v)
		if errResult != nil {
			return errResult, nil
		}
		in.EndDate = end
	}

	event, err := s.store.CreateEvent(ctx, s.user(), in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add event: %v", err)), nil
	}
	return jsonResult(event), nil
}

func (s *Server) handleListEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := int(req.GetFloat("days", 7))
	if days < 1 {
		return mcp.NewToolResultError("days must be at least 1"), nil
	}
	from := s.dash.Now()
	to := from.AddDate(0, 0, days)

	events, err := s.store.ListEvents(ctx, s.user(), &from, &to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list events: %v", err)), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No events found."), nil
	}
	return jsonResult(events), nil
}

func (s *Server) handleListNotifications(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ns, err := s.store.ListNotifications(ctx, s.user(), store.NotificationFilter{
		Read:   store.ParseReadFilter(req.GetString("filter", "")),
		Search: req.GetString("search", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list notifications: %v", err)), nil
	}
	if len(ns) == 0 {
		return mcp.NewToolResultText("No notifications found."), nil
	}
	return jsonResult(ns), nil
}

func (s *Server) handleMarkNotificationRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if id == "all" {
		n, err := s.store.MarkAllNotificationsRead(ctx, s.user())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to mark notifications: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d notifications marked as read.", n)), nil
	}
	if err := s.store.MarkNotificationRead(ctx, s.user(), id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to mark notification: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Notification %s marked as read.", id)), nil
}

func (s *Server) handleCheckDeadlines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	created, err := notify.CheckUpcomingDeadlines(ctx, s.store, s.user(), s.dash.Now(), s.window)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check deadlines: %v", err)), nil
	}
	if len(created) == 0 {
		return mcp.NewToolResultText("Nothing due soon."), nil
	}
	return jsonResult(created), nil
}
