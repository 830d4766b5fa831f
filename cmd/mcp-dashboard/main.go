// Command mcp-dashboard exposes the study dashboard over MCP.
//
// The server shares the configuration and SQLite database of the
// interactive dashboard, so tasks added by an assistant show up there.
//
// Usage:
//
//	./mcp-dashboard                 # Start MCP server (stdio)
//	./mcp-dashboard -config path    # Use another config file
//	./mcp-dashboard --help          # Show help
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/studydash/internal/app"
	"github.com/notexe/studydash/internal/config"
	"github.com/notexe/studydash/internal/mcptools"
)

func main() {
	flag.Usage = printHelp
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol, so logs stay on stderr.
	a, err := app.Open(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	s := mcptools.NewServer(a.Store, a.Dashboard, a.NotifyWindow())

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Fprintln(os.Stderr, `MCP Dashboard Server - Study dashboard via MCP protocol

USAGE:
    mcp-dashboard                Start MCP server (communicates via stdio)
    mcp-dashboard -config PATH   Configuration file (default: ~/.studydash/config.yaml)
    mcp-dashboard --help         Show this help

ENVIRONMENT:
    STUDYDASH_STORE__PATH  Path to SQLite database file
    STUDYDASH_USER__ID     User the tools act for

TOOLS:
    get_dashboard               Stats, upcoming tasks, recent activity and motivation
    add_task / update_task      Create or edit a task
    list_tasks                  List tasks (optional status filter)
    complete_task / delete_task Finish or remove a task
    log_study_session           Record a study session
    add_note / list_notes       Notes with optional search
    add_event / list_events     Calendar events
    list_notifications          Inbox (optional unread filter)
    mark_notification_read      Mark one or all notifications read
    check_deadlines             Create due-soon, overdue and event reminders

CONFIGURATION:
    {
      "mcpServers": {
        "studydash": {
          "command": "/path/to/mcp-dashboard",
          "args": []
        }
      }
    }`)
}
