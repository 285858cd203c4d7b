package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/ops"
	"github.com/hpungsan/chronicle/internal/task"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// EmitTaskRequest represents the arguments for diary_emit_task.
type EmitTaskRequest struct {
	Date    string `json:"date,omitempty"`
	Content string `json:"content,omitempty"`
	Format  string `json:"format,omitempty"`
	Theme   string `json:"theme,omitempty"`
	Agent   string `json:"agent,omitempty"`
	Model   string `json:"model,omitempty"`
}

// SaveEntryRequest represents the arguments for diary_save_entry.
type SaveEntryRequest struct {
	Text         string `json:"text"`
	Date         string `json:"date,omitempty"`
	Task         string `json:"task,omitempty"`
	Format       string `json:"format,omitempty"`
	Theme        string `json:"theme,omitempty"`
	Path         string `json:"path,omitempty"`
	NoPersistent bool   `json:"no_persistent,omitempty"`
	Strict       bool   `json:"strict,omitempty"`
}

// ExportRequest represents the arguments for diary_export.
type ExportRequest struct {
	Path       string `json:"path,omitempty"`
	Format     string `json:"format,omitempty"`
	Theme      string `json:"theme,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	NoArchives bool   `json:"no_archives,omitempty"`
}

// ListRequest represents the arguments for diary_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// FetchRequest represents the arguments for diary_fetch.
type FetchRequest struct {
	Date        string `json:"date"`
	IncludeText *bool  `json:"include_text,omitempty"`
}

// HandleEmitTask handles the diary_emit_task tool call.
func (h *Handlers) HandleEmitTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EmitTaskRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	p, err := ops.BuildTask(h.env, ops.BuildTaskInput{
		Date:    input.Date,
		Content: input.Content,
		Format:  input.Format,
		Theme:   input.Theme,
		Routing: task.Routing{Agent: input.Agent, Model: input.Model},
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(p)
}

// HandleSaveEntry handles the diary_save_entry tool call.
func (h *Handlers) HandleSaveEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveEntryRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	submit := ops.SubmitInput{
		Date:         input.Date,
		Text:         input.Text,
		Format:       input.Format,
		Theme:        input.Theme,
		NoPersistent: input.NoPersistent,
		Strict:       input.Strict,
	}

	// The emitted payload fills in whatever the caller left out.
	if input.Task != "" {
		p, err := task.Parse([]byte(input.Task))
		if err != nil {
			return errorResult(err), nil
		}
		submit.TaskID = p.ID
		submit.Date = firstNonEmpty(submit.Date, p.Date)
		submit.Format = firstNonEmpty(submit.Format, p.Format)
		submit.Theme = firstNonEmpty(submit.Theme, p.Theme)
	}
	if submit.Date == "" {
		submit.Date = h.env.Today()
	}

	if input.Path != "" {
		if err := ops.ValidateConfinedPath(input.Path, ops.ConfinedDirs(h.env)); err != nil {
			return errorResult(err), nil
		}
		submit.Output = input.Path
	}

	result, err := ops.Submit(ctx, h.env, submit)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the diary_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	// Agent-supplied paths are confined to the diary directory.
	if input.Path != "" {
		if err := ops.ValidateConfinedPath(input.Path, ops.ConfinedDirs(h.env)); err != nil {
			return errorResult(err), nil
		}
	}

	result, err := ops.Export(ctx, h.env, ops.ExportInput{
		Output:     input.Path,
		Format:     input.Format,
		Theme:      input.Theme,
		From:       input.From,
		To:         input.To,
		NoArchives: input.NoArchives,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the diary_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.List(h.env, ops.ListInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the diary_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Fetch(h.env, ops.FetchInput{
		Date:        input.Date,
		IncludeText: input.IncludeText,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var cErr *errors.ChronicleError
	if stderrors.As(err, &cErr) {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		// Internal errors carry file paths and SQL text; keep them out.
		if cErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  1,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
