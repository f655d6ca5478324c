package planner

import (
	"context"
	"time"

	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/macros"
	"github.com/2beens/betterlife/internal/schedule"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/internal/workouts"
)

type activeRangeGetter interface {
	Active(ctx context.Context, userID string) (*schedule.Range, error)
}

type assignmentViewer interface {
	Views(ctx context.Context, userID string, day days.Key, now time.Time) ([]workouts.AssignmentView, error)
}

type macroSource interface {
	Targets(ctx context.Context, userID string, today days.Date) (macros.Targets, error)
	Get(ctx context.Context, userID string, date days.Date) (macros.Log, error)
}

// DayPlan is everything a single day card shows.
type DayPlan struct {
	Day         days.Key                  `json:"day"`
	Title       string                    `json:"title"`
	IsToday     bool                      `json:"isToday"`
	Assignments []workouts.AssignmentView `json:"assignments"`
	// Macros and Colors are only filled for calendar days.
	Macros *macros.Log                  `json:"macros,omitempty"`
	Colors map[macros.Macro]macros.Color `json:"colors,omitempty"`
}

type Plan struct {
	Schedule   *schedule.Range `json:"schedule"`
	WeekNumber int             `json:"weekNumber"`
	Targets    macros.Targets  `json:"targets"`
	Days       []DayPlan       `json:"days"`
}

type Planner struct {
	schedules activeRangeGetter
	ledger    assignmentViewer
	macros    macroSource
}

func NewPlanner(schedules activeRangeGetter, ledger assignmentViewer, macroSource macroSource) *Planner {
	return &Planner{
		schedules: schedules,
		ledger:    ledger,
		macros:    macroSource,
	}
}

// Plan lays out the active schedule day by day. Without a schedule the plan has no days.
func (p *Planner) Plan(ctx context.Context, userID string, now time.Time) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.plan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	today := days.FromTime(now)
	targets, err := p.macros.Targets(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Targets: targets,
		Days:    []DayPlan{},
	}
	active, err := p.schedules.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return plan, nil
	}

	plan.Schedule = active
	plan.WeekNumber = active.WeekNumber()
	plan.Days = make([]DayPlan, 0, active.Len())
	for date := range active.Days() {
		day := days.Concrete(date)
		views, err := p.ledger.Views(ctx, userID, day, now)
		if err != nil {
			return nil, err
		}
		l, err := p.macros.Get(ctx, userID, date)
		if err != nil {
			return nil, err
		}

		plan.Days = append(plan.Days, DayPlan{
			Day:         day,
			Title:       date.Time().Format("Mon, Jan 2"),
			IsToday:     date == today,
			Assignments: views,
			Macros:      &l,
			Colors:      l.Colors(targets),
		})
	}
	return plan, nil
}

// FixedWeek lays out the seven weekdays of the fixed template, sunday first.
func (p *Planner) FixedWeek(ctx context.Context, userID string, now time.Time) (_ []DayPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.planner.fixedWeek")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	week := make([]DayPlan, 0, len(days.Week))
	for _, wd := range days.Week {
		day := days.Weekly(wd)
		views, err := p.ledger.Views(ctx, userID, day, now)
		if err != nil {
			return nil, err
		}
		week = append(week, DayPlan{
			Day:         day,
			Title:       wd.Title(),
			IsToday:     day.IsToday(now),
			Assignments: views,
		})
	}
	return week, nil
}
