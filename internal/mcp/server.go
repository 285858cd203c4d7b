// Package mcp exposes the diary operations as MCP tools over stdio.
package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/chronicle/internal/ops"
	"github.com/hpungsan/chronicle/internal/render"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"diary_emit_task": {
		def: mcp.NewTool("diary_emit_task",
			mcp.WithDescription("Build the diary task payload for a day. Without content, today's session log, recent sessions and the archives are gathered from the workspace. Write the entry following the payload's system and prompt, then call diary_save_entry."),
			mcp.WithString("date", mcp.Description("Entry date (YYYY-MM-DD). Default: today.")),
			mcp.WithString("content", mcp.Description("Source material to diarize. Default: gathered from the workspace.")),
			mcp.WithString("format", mcp.Description("Document format."), mcp.Enum(render.Formats...)),
			mcp.WithString("theme", mcp.Description("Document theme."), mcp.Enum(render.ThemeNames()...)),
			mcp.WithString("agent", mcp.Description("Routing hint: agent that should write the entry.")),
			mcp.WithString("model", mcp.Description("Routing hint: model that should write the entry.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEmitTask },
	},
	"diary_save_entry": {
		def: mcp.NewTool("diary_save_entry",
			mcp.WithDescription("Save a written diary entry: render its document, write the entry file, append archive sections and index it."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Entry markdown starting with '# YYYY-MM-DD — Title'.")),
			mcp.WithString("date", mcp.Description("Entry date (YYYY-MM-DD). Default: the task's date, else today.")),
			mcp.WithString("task", mcp.Description("The payload JSON returned by diary_emit_task; supplies date, format, theme and task id.")),
			mcp.WithString("format", mcp.Description("Document format."), mcp.Enum(render.Formats...)),
			mcp.WithString("theme", mcp.Description("Document theme."), mcp.Enum(render.ThemeNames()...)),
			mcp.WithString("path", mcp.Description("Document path, directly inside the diary directory or its rendered/ subdirectory.")),
			mcp.WithBoolean("no_persistent", mcp.Description("Do not append to archive files.")),
			mcp.WithBoolean("strict", mcp.Description("Fail when required sections are missing.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveEntry },
	},
	"diary_export": {
		def: mcp.NewTool("diary_export",
			mcp.WithDescription("Render every stored entry, plus the archives, into one document."),
			mcp.WithString("path", mcp.Description("Output path, directly inside the diary directory. Default: <diary>/<pdf_name>.")),
			mcp.WithString("format", mcp.Description("Document format."), mcp.Enum(render.Formats...)),
			mcp.WithString("theme", mcp.Description("Document theme."), mcp.Enum(render.ThemeNames()...)),
			mcp.WithString("from", mcp.Description("First date to include (YYYY-MM-DD).")),
			mcp.WithString("to", mcp.Description("Last date to include (YYYY-MM-DD).")),
			mcp.WithBoolean("no_archives", mcp.Description("Leave out the archive pages.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"diary_list": {
		def: mcp.NewTool("diary_list",
			mcp.WithDescription("List indexed diary entries, newest first."),
			mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100).")),
			mcp.WithNumber("offset", mcp.Description("Entries to skip.")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"diary_fetch": {
		def: mcp.NewTool("diary_fetch",
			mcp.WithDescription("Read the stored entry for a date."),
			mcp.WithString("date", mcp.Required(), mcp.Description("Entry date (YYYY-MM-DD).")),
			mcp.WithBoolean("include_text", mcp.Description("Include the entry markdown (default true).")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
}

// AllToolNames returns all tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the diary tools registered, except
// those listed in the config's disabled_tools.
func NewServer(env *ops.Env, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"chronicle",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	disabled := make(map[string]bool)
	for _, name := range env.Config.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(env *ops.Env, version string) error {
	s := NewServer(env, version)
	return server.ServeStdio(s)
}
