package report

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/macros"
	"github.com/2beens/betterlife/internal/schedule"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"
)

type activeRangeGetter interface {
	Active(ctx context.Context, userID string) (*schedule.Range, error)
}

type macroSource interface {
	Targets(ctx context.Context, userID string, today days.Date) (macros.Targets, error)
	Get(ctx context.Context, userID string, date days.Date) (macros.Log, error)
}

// Summary counts the macro colours over every day of the active schedule.
// Each day adds up to three counts, one per tracked macro.
type Summary struct {
	Good   int `json:"good"`
	Medium int `json:"medium"`
	Bad    int `json:"bad"`
}

func (s *Summary) add(c macros.Color) {
	switch c {
	case macros.Green:
		s.Good++
	case macros.Yellow:
		s.Medium++
	case macros.Red:
		s.Bad++
	}
}

type Reporter struct {
	schedules activeRangeGetter
	macros    macroSource
}

func NewReporter(schedules activeRangeGetter, macroSource macroSource) *Reporter {
	return &Reporter{
		schedules: schedules,
		macros:    macroSource,
	}
}

// Summarize is recomputed from the stored logs on every call. Days without a log count as no intake.
func (r *Reporter) Summarize(ctx context.Context, userID string, today days.Date) (_ Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.report.summarize")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	active, err := r.schedules.Active(ctx, userID)
	if err != nil || active == nil {
		return Summary{}, err
	}
	targets, err := r.macros.Targets(ctx, userID, today)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for date := range active.Days() {
		l, err := r.macros.Get(ctx, userID, date)
		if err != nil {
			return Summary{}, err
		}
		for _, c := range l.Colors(targets) {
			summary.add(c)
		}
	}
	return summary, nil
}

type Handler struct {
	reporter *Reporter
	now      func() time.Time
}

func NewHandler(reporter *Reporter, now func() time.Time) *Handler {
	return &Handler{
		reporter: reporter,
		now:      now,
	}
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.report.summary")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.reporter.Summarize(ctx, userID, days.FromTime(h.now()))
	if err != nil {
		apperrors.WriteHTTP(w, err, "summarize macros")
		return
	}
	pkg.WriteJSON(w, summary, http.StatusOK)
}
