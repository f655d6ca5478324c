package mcp

import (
	"context"
	"time"

	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/macros"
	"github.com/2beens/betterlife/internal/planner"
	"github.com/2beens/betterlife/internal/report"
)

type macroService interface {
	Targets(ctx context.Context, userID string, today days.Date) (macros.Targets, error)
	DayStatus(ctx context.Context, userID string, date, today days.Date) (*macros.DayStatus, error)
}

type dayPlanner interface {
	Plan(ctx context.Context, userID string, now time.Time) (*planner.Plan, error)
	FixedWeek(ctx context.Context, userID string, now time.Time) ([]planner.DayPlan, error)
}

type summarizer interface {
	Summarize(ctx context.Context, userID string, today days.Date) (report.Summary, error)
}

// contextService provides read-only views of a user's plan.
// Used by Handler for testability.
type contextService interface {
	Targets(ctx context.Context, userID string) (macros.Targets, error)
	DayMacros(ctx context.Context, userID string, date days.Date) (*macros.DayStatus, error)
	Plan(ctx context.Context, userID string) (*planner.Plan, error)
	FixedWeek(ctx context.Context, userID string) ([]planner.DayPlan, error)
	MacroSummary(ctx context.Context, userID string) (report.Summary, error)
}

// ContextService resolves "today" with its clock and delegates to the domain services.
type ContextService struct {
	macros   macroService
	planner  dayPlanner
	reporter summarizer
	now      func() time.Time
}

func NewContextService(macroSvc macroService, plans dayPlanner, reporter summarizer, now func() time.Time) *ContextService {
	return &ContextService{
		macros:   macroSvc,
		planner:  plans,
		reporter: reporter,
		now:      now,
	}
}

func (s *ContextService) today() days.Date {
	return days.FromTime(s.now())
}

func (s *ContextService) Targets(ctx context.Context, userID string) (macros.Targets, error) {
	return s.macros.Targets(ctx, userID, s.today())
}

func (s *ContextService) DayMacros(ctx context.Context, userID string, date days.Date) (*macros.DayStatus, error) {
	return s.macros.DayStatus(ctx, userID, date, s.today())
}

func (s *ContextService) Plan(ctx context.Context, userID string) (*planner.Plan, error) {
	return s.planner.Plan(ctx, userID, s.now())
}

func (s *ContextService) FixedWeek(ctx context.Context, userID string) ([]planner.DayPlan, error) {
	return s.planner.FixedWeek(ctx, userID, s.now())
}

func (s *ContextService) MacroSummary(ctx context.Context, userID string) (report.Summary, error) {
	return s.reporter.Summarize(ctx, userID, s.today())
}
