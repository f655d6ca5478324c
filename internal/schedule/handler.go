package schedule

import (
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	log "github.com/sirupsen/logrus"
)

type RangeRequest struct {
	StartDate days.Date `json:"startDate"`
	EndDate   days.Date `json:"endDate"`
}

type PickRequest struct {
	Date days.Date `json:"date"`
}

type ActiveResponse struct {
	Schedule   *Range `json:"schedule"`
	WeekNumber int    `json:"weekNumber"`
	Days       int    `json:"days"`
}

type DeleteResponse struct {
	DeletedID int64 `json:"deletedId"`
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

func activeResponse(r *Range) ActiveResponse {
	if r == nil {
		return ActiveResponse{}
	}
	return ActiveResponse{
		Schedule:   r,
		WeekNumber: r.WeekNumber(),
		Days:       r.Len(),
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.get")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	active, err := h.service.Active(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "get schedule")
		return
	}
	pkg.WriteJSON(w, activeResponse(active), http.StatusOK)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.save")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var req RangeRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("save schedule, read body: %s", err)
		http.Error(w, "invalid schedule data", http.StatusBadRequest)
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		http.Error(w, "select both start and end dates", http.StatusBadRequest)
		return
	}

	saved, err := h.service.SaveRange(ctx, userID, req.StartDate, req.EndDate, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "save schedule")
		return
	}
	pkg.WriteJSON(w, activeResponse(saved), http.StatusCreated)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.delete")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, userID, id); err != nil {
		apperrors.WriteHTTP(w, err, "delete schedule")
		return
	}
	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (h *Handler) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.selection")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	sel, err := h.service.Selection(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "get selection")
		return
	}
	pkg.WriteJSON(w, sel, http.StatusOK)
}

func (h *Handler) HandlePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.pick")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var req PickRequest
	if err := pkg.ReadJSON(r, &req); err != nil || req.Date.IsZero() {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	sel, err := h.service.Pick(ctx, userID, req.Date)
	if err != nil {
		apperrors.WriteHTTP(w, err, "pick date")
		return
	}
	pkg.WriteJSON(w, sel, http.StatusOK)
}

func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.confirm")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	saved, err := h.service.Confirm(ctx, userID, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "confirm schedule")
		return
	}
	pkg.WriteJSON(w, activeResponse(saved), http.StatusCreated)
}
