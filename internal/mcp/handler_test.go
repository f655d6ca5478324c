package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/macros"
	"github.com/2beens/betterlife/internal/planner"
	"github.com/2beens/betterlife/internal/report"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mockContextService implements contextService for tests.
type mockContextService struct {
	targets    macros.Targets
	dayStatus  *macros.DayStatus
	plan       *planner.Plan
	fixedWeek  []planner.DayPlan
	summary    report.Summary
	err        error
	lastUserID string
	lastDate   days.Date
}

func (m *mockContextService) Targets(_ context.Context, userID string) (macros.Targets, error) {
	m.lastUserID = userID
	return m.targets, m.err
}

func (m *mockContextService) DayMacros(_ context.Context, userID string, date days.Date) (*macros.DayStatus, error) {
	m.lastUserID = userID
	m.lastDate = date
	return m.dayStatus, m.err
}

func (m *mockContextService) Plan(_ context.Context, userID string) (*planner.Plan, error) {
	m.lastUserID = userID
	return m.plan, m.err
}

func (m *mockContextService) FixedWeek(_ context.Context, userID string) ([]planner.DayPlan, error) {
	m.lastUserID = userID
	return m.fixedWeek, m.err
}

func (m *mockContextService) MacroSummary(_ context.Context, userID string) (report.Summary, error) {
	m.lastUserID = userID
	return m.summary, m.err
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestHandler_GetMacroTargetsTool(t *testing.T) {
	t.Run("returns_targets", func(t *testing.T) {
		svc := &mockContextService{targets: macros.Targets{Calories: 3800, Protein: 160, Carbs: 520, Fat: 120}}
		fn := NewHandler(svc).GetMacroTargetsTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "u1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected IsError: %s", resultText(t, res))
		}
		text := resultText(t, res)
		if !strings.Contains(text, `"calories": 3800`) || !strings.Contains(text, `"protein": 160`) {
			t.Fatalf("content text = %q", text)
		}
		if svc.lastUserID != "u1" {
			t.Fatalf("user id = %q", svc.lastUserID)
		}
	})

	t.Run("invalid_user_id", func(t *testing.T) {
		svc := &mockContextService{}
		fn := NewHandler(svc).GetMacroTargetsTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "a_b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if !strings.HasPrefix(resultText(t, res), "Invalid user_id") {
			t.Fatalf("content text = %q", resultText(t, res))
		}
		if svc.lastUserID != "" {
			t.Fatalf("service must not be called")
		}
	})

	t.Run("service_error", func(t *testing.T) {
		fn := NewHandler(&mockContextService{err: errors.New("store gone")}).GetMacroTargetsTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "u1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if got := resultText(t, res); got != "Error fetching macro targets: store gone" {
			t.Fatalf("content text = %q", got)
		}
	})
}

func TestHandler_GetDayMacrosTool(t *testing.T) {
	t.Run("invalid_date", func(t *testing.T) {
		fn := NewHandler(&mockContextService{}).GetDayMacrosTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, DayMacrosInput{UserID: "u1", Date: "monday"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if got := resultText(t, res); got != "Invalid date: use YYYY-MM-DD" {
			t.Fatalf("content text = %q", got)
		}
	})

	t.Run("returns_day_status", func(t *testing.T) {
		date := days.New(2024, 3, 9)
		svc := &mockContextService{dayStatus: &macros.DayStatus{
			Date: date,
			Log:  macros.Log{Protein: 155, Carbs: 500, Fat: 100, Calories: 3520},
			Colors: map[macros.Macro]macros.Color{
				macros.Protein: macros.Green,
			},
		}}
		fn := NewHandler(svc).GetDayMacrosTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, DayMacrosInput{UserID: "u1", Date: "2024-03-09"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected IsError: %s", resultText(t, res))
		}
		if svc.lastDate != date {
			t.Fatalf("date = %s", svc.lastDate)
		}
		text := resultText(t, res)
		if !strings.Contains(text, `"date": "2024-03-09"`) || !strings.Contains(text, `"protein": "green"`) {
			t.Fatalf("content text = %q", text)
		}
	})
}

func TestHandler_PlanTools(t *testing.T) {
	svc := &mockContextService{
		plan: &planner.Plan{WeekNumber: 5, Days: []planner.DayPlan{{Title: "Mon, Jan 1"}}},
		fixedWeek: []planner.DayPlan{
			{Day: days.Weekly(days.Sunday), Title: "Sunday"},
		},
		summary: report.Summary{Good: 3, Medium: 2, Bad: 26},
	}
	h := NewHandler(svc)

	for name, tc := range map[string]struct {
		fn   func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error)
		want string
	}{
		"plan":       {fn: h.GetDayPlanTool(), want: `"title": "Mon, Jan 1"`},
		"fixed_week": {fn: h.GetFixedWeekTool(), want: `"day": "fixed_sunday"`},
		"summary":    {fn: h.GetMacroSummaryTool(), want: `"bad": 26`},
	} {
		t.Run(name, func(t *testing.T) {
			res, _, err := tc.fn(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "u1"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.IsError {
				t.Fatalf("unexpected IsError: %s", resultText(t, res))
			}
			if text := resultText(t, res); !strings.Contains(text, tc.want) {
				t.Fatalf("content text = %q, want it to contain %q", text, tc.want)
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	if s := NewServer(nil, nil, nil, nil); s == nil {
		t.Fatalf("expected server")
	}
}
