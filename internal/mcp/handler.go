package mcp

import (
	"context"
	"encoding/json"

	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/kvstore"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// UserInput is the input of every per-user tool.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user whose data is read"`
}

// DayMacrosInput is the input for get_day_macros.
type DayMacrosInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user whose data is read"`
	Date   string `json:"date" jsonschema:"Calendar date (YYYY-MM-DD)"`
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func checkUser(userID string) *mcp.CallToolResult {
	if err := kvstore.ValidateUserID(userID); err != nil {
		return errorResult("Invalid user_id: " + err.Error())
	}
	return nil
}

// userTool wraps a per-user read into an MCP tool handler.
func userTool[T any](what string, read func(ctx context.Context, userID string) (T, error)) func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		if res := checkUser(in.UserID); res != nil {
			return res, nil, nil
		}
		v, err := read(ctx, in.UserID)
		if err != nil {
			return errorResult("Error fetching " + what + ": " + err.Error()), nil, nil
		}
		return jsonResult(v), nil, nil
	}
}

// GetMacroTargetsTool returns the MCP tool handler for get_macro_targets.
func (h *Handler) GetMacroTargetsTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return userTool("macro targets", h.service.Targets)
}

// GetDayPlanTool returns the MCP tool handler for get_day_plan.
func (h *Handler) GetDayPlanTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return userTool("plan", h.service.Plan)
}

// GetFixedWeekTool returns the MCP tool handler for get_fixed_week.
func (h *Handler) GetFixedWeekTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return userTool("fixed week", h.service.FixedWeek)
}

// GetMacroSummaryTool returns the MCP tool handler for get_macro_summary.
func (h *Handler) GetMacroSummaryTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return userTool("macro summary", h.service.MacroSummary)
}

// GetDayMacrosTool returns the MCP tool handler for get_day_macros.
func (h *Handler) GetDayMacrosTool() func(context.Context, *mcp.CallToolRequest, DayMacrosInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DayMacrosInput) (*mcp.CallToolResult, any, error) {
		if res := checkUser(in.UserID); res != nil {
			return res, nil, nil
		}
		date, err := days.Parse(in.Date)
		if err != nil {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}
		status, err := h.service.DayMacros(ctx, in.UserID, date)
		if err != nil {
			return errorResult("Error fetching day macros: " + err.Error()), nil, nil
		}
		return jsonResult(status), nil, nil
	}
}
