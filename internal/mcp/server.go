package mcp

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with read-only planning tools: macro targets,
// day macros, the schedule plan, the fixed week and the macro summary.
func NewServer(macroSvc macroService, plans dayPlanner, reporter summarizer, now func() time.Time) *mcp.Server {
	h := NewHandler(NewContextService(macroSvc, plans, reporter, now))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "betterlife-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_macro_targets",
		Description: "Returns the daily macro targets (calories, protein, carbs, fat in grams) derived from the user's age and weight. Arg: user_id.",
	}, h.GetMacroTargetsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_day_macros",
		Description: "Returns the logged macros of one calendar day next to the targets, with a green/yellow/red colour per macro. Args: user_id, date (YYYY-MM-DD).",
	}, h.GetDayMacrosTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_day_plan",
		Description: "Returns the active schedule with every day of the range: assigned workouts with stats and set times, logged macros and colours. Arg: user_id. Use when you need to see what is planned or done on which day.",
	}, h.GetDayPlanTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_fixed_week",
		Description: "Returns the fixed weekly template, sunday to saturday, with the workouts assigned to each weekday. Arg: user_id.",
	}, h.GetFixedWeekTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_macro_summary",
		Description: "Counts the good, medium and bad days of the active schedule by how close the logged macros were to the targets. Arg: user_id.",
	}, h.GetMacroSummaryTool())

	return s
}
