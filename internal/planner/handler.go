package planner

import (
	"net/http"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"
)

type Handler struct {
	planner *Planner
	now     func() time.Time
}

func NewHandler(planner *Planner, now func() time.Time) *Handler {
	return &Handler{
		planner: planner,
		now:     now,
	}
}

func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.planner.plan")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	plan, err := h.planner.Plan(ctx, userID, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "get plan")
		return
	}
	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (h *Handler) HandleFixedWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.planner.fixedWeek")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	week, err := h.planner.FixedWeek(ctx, userID, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "get fixed week")
		return
	}
	pkg.WriteJSON(w, week, http.StatusOK)
}
