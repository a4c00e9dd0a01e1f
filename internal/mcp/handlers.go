package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{db: db, cfg: cfg, logger: logger}
}

// Request types for each tool

// FetchRequest represents the arguments for spell_fetch.
type FetchRequest struct {
	Name      string `json:"name"`
	Normalize bool   `json:"normalize,omitempty"`
}

// ListRequest represents the arguments for spell_list.
type ListRequest struct {
	Categories []string `json:"categories,omitempty"`
	Level      *int     `json:"level,omitempty"`
	AllLevels  bool     `json:"all_levels,omitempty"`
	MaxSpells  *int     `json:"max_spells,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// ImportRequest represents the arguments for spell_import.
type ImportRequest struct {
	Path   string `json:"path"`
	Strict bool   `json:"strict,omitempty"`
}

// BuildRequest represents the arguments for book_build.
type BuildRequest struct {
	Input      string   `json:"input,omitempty"`
	Output     string   `json:"output,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Level      *int     `json:"level,omitempty"`
	AllLevels  bool     `json:"all_levels,omitempty"`
	MaxSpells  *int     `json:"max_spells,omitempty"`
	Title      string   `json:"title,omitempty"`
	Creator    string   `json:"creator,omitempty"`
	Strict     bool     `json:"strict,omitempty"`
}

// VerifyRequest represents the arguments for book_verify.
type VerifyRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleFetch handles the spell_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		Name:      input.Name,
		Normalize: input.Normalize,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the spell_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, h.cfg, ops.ListInput{
		WorkingSet: ops.WorkingSet{
			Categories: input.Categories,
			Level:      input.Level,
			AllLevels:  input.AllLevels,
			Limit:      input.MaxSpells,
		},
		PageLimit: input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCategories handles the spell_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Categories(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the spell_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, h.logger, ops.ImportInput{
		Path:   input.Path,
		Strict: input.Strict,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleBuild handles the book_build tool call.
func (h *Handlers) HandleBuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BuildRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Build(ctx, h.db, h.cfg, h.logger, ops.BuildInput{
		Input:  input.Input,
		Output: input.Output,
		WorkingSet: ops.WorkingSet{
			Categories: input.Categories,
			Level:      input.Level,
			AllLevels:  input.AllLevels,
			Limit:      input.MaxSpells,
		},
		Title:   input.Title,
		Creator: input.Creator,
		Strict:  input.Strict,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleVerify handles the book_verify tool call.
func (h *Handlers) HandleVerify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VerifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Verify(h.cfg, ops.VerifyInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SpellbookError
	if stderrors.As(err, &sErr) {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		if sErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else {
			if err != error(sErr) {
				errorObj["message"] = err.Error() // keep wrapper context
			}
			if sErr.Details != nil {
				errorObj["details"] = sErr.Details
			}
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
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
