package measurements

import (
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CardRequest struct {
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
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

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.list")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.service.List(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "list measurements")
		return
	}
	pkg.WriteJSON(w, list, http.StatusOK)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.save")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var m Measurement
	if err := pkg.ReadJSON(r, &m); err != nil {
		log.Errorf("save measurement, read body: %s", err)
		http.Error(w, "save measurement failed", http.StatusBadRequest)
		return
	}

	saved, err := h.service.Save(ctx, userID, m, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "save measurement")
		return
	}
	pkg.WriteJSON(w, saved, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.delete")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, userID, id); err != nil {
		apperrors.WriteHTTP(w, err, "delete measurement")
		return
	}
	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (h *Handler) HandleCards(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.cards")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	cards, err := h.service.Cards(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "get measurement cards")
		return
	}
	pkg.WriteJSON(w, cards, http.StatusOK)
}

func (h *Handler) HandleSetCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.setCard")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	card, err := ParseCard(mux.Vars(r)["card"])
	if err != nil {
		apperrors.WriteHTTP(w, err, "set measurement card")
		return
	}

	var req CardRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("set measurement card, read body: %s", err)
		http.Error(w, "set measurement card failed", http.StatusBadRequest)
		return
	}

	cards, err := h.service.SetCard(ctx, userID, card, req.Type, req.Value)
	if err != nil {
		apperrors.WriteHTTP(w, err, "set measurement card")
		return
	}
	pkg.WriteJSON(w, cards, http.StatusOK)
}
