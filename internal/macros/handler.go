package macros

import (
	"net/http"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type IntakeRequest struct {
	Macro  string `json:"macro"`
	Amount int    `json:"amount"`
}

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service, now func() time.Time) *Handler {
	return &Handler{
		service: service,
		now:     now,
	}
}

func dateFromPath(r *http.Request) (days.Date, error) {
	d, err := days.Parse(mux.Vars(r)["date"])
	if err != nil {
		return days.Date{}, apperrors.Validationf("invalid date: %s", mux.Vars(r)["date"])
	}
	return d, nil
}

func (h *Handler) HandleTargets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.macros.targets")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	targets, err := h.service.Targets(ctx, userID, days.FromTime(h.now()))
	if err != nil {
		apperrors.WriteHTTP(w, err, "get targets")
		return
	}
	pkg.WriteJSON(w, targets, http.StatusOK)
}

func (h *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.macros.getDay")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	date, err := dateFromPath(r)
	if err != nil {
		apperrors.WriteHTTP(w, err, "get day macros")
		return
	}

	status, err := h.service.DayStatus(ctx, userID, date, days.FromTime(h.now()))
	if err != nil {
		apperrors.WriteHTTP(w, err, "get day macros")
		return
	}
	pkg.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) HandleSetDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.macros.setDay")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	date, err := dateFromPath(r)
	if err != nil {
		apperrors.WriteHTTP(w, err, "set day macros")
		return
	}

	var l Log
	if err := pkg.ReadJSON(r, &l); err != nil {
		log.Errorf("set day macros, read body: %s", err)
		http.Error(w, "invalid macros data", http.StatusBadRequest)
		return
	}

	saved, err := h.service.Set(ctx, userID, date, l)
	if err != nil {
		apperrors.WriteHTTP(w, err, "set day macros")
		return
	}
	pkg.WriteJSON(w, saved, http.StatusOK)
}

func (h *Handler) HandleAddIntake(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.macros.addIntake")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	date, err := dateFromPath(r)
	if err != nil {
		apperrors.WriteHTTP(w, err, "add intake")
		return
	}

	var req IntakeRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("add intake, read body: %s", err)
		http.Error(w, "invalid intake data", http.StatusBadRequest)
		return
	}
	m, err := ParseMacro(req.Macro)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.service.AddIntake(ctx, userID, date, m, req.Amount)
	if err != nil {
		apperrors.WriteHTTP(w, err, "add intake")
		return
	}
	log.Debugf("user %s added %d %s on %s", userID, req.Amount, m, date)
	pkg.WriteJSON(w, saved, http.StatusOK)
}
