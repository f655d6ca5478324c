package workouts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AddWorkoutRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type CustomWorkoutRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

type AssignRequest struct {
	WorkoutID int64 `json:"workoutId"`
}

type SetTimeRequest struct {
	Set  int    `json:"set"`
	Time string `json:"time"`
}

type AssignmentStatsResponse struct {
	Stats   Stats  `json:"stats"`
	Display string `json:"display"`
}

type DeleteResponse struct {
	DeletedID int64 `json:"deletedId"`
}

type Handler struct {
	catalog *Catalog
	ledger  *Ledger
	now     func() time.Time
}

func NewHandler(catalog *Catalog, ledger *Ledger, now func() time.Time) *Handler {
	return &Handler{
		catalog: catalog,
		ledger:  ledger,
		now:     now,
	}
}

func idFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func dayFromPath(r *http.Request) (days.Key, bool) {
	day, err := days.ParseKey(mux.Vars(r)["day"])
	return day, err == nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.catalog.List(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "list workouts")
		return
	}
	pkg.WriteJSON(w, list, http.StatusOK)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var req AddWorkoutRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("add workout, read body: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	added, err := h.catalog.Add(ctx, userID, req.Name, req.Category)
	if err != nil {
		apperrors.WriteHTTP(w, err, "add workout")
		return
	}
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	id, ok := idFromPath(r)
	if !ok {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := h.catalog.Delete(ctx, userID, id); err != nil {
		apperrors.WriteHTTP(w, err, "delete workout")
		return
	}
	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.categories")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	categories, err := h.catalog.Categories(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "get categories")
		return
	}
	pkg.WriteJSON(w, categories, http.StatusOK)
}

func (h *Handler) HandleAddCustom(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addCustom")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var req CustomWorkoutRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("add custom workout, read body: %s", err)
		http.Error(w, "add custom workout failed", http.StatusBadRequest)
		return
	}

	if err := h.catalog.AddCustom(ctx, userID, req.Category, req.Name); err != nil {
		apperrors.WriteHTTP(w, err, "add custom workout")
		return
	}
	pkg.WriteResponse(w, pkg.ContentType.Text, "added", http.StatusCreated)
}

func (h *Handler) HandleDeleteCustom(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteCustom")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")
	name := r.URL.Query().Get("name")
	if category == "" || name == "" {
		http.Error(w, "error, category or name empty", http.StatusBadRequest)
		return
	}

	if err := h.catalog.DeleteCustom(ctx, userID, category, name); err != nil {
		apperrors.WriteHTTP(w, err, "delete custom workout")
		return
	}
	pkg.WriteResponse(w, pkg.ContentType.Text, "deleted", http.StatusOK)
}

func (h *Handler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assignments.list")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	day, ok := dayFromPath(r)
	if !ok {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}

	views, err := h.ledger.Views(ctx, userID, day, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "list assignments")
		return
	}
	pkg.WriteJSON(w, views, http.StatusOK)
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assignments.assign")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	day, ok := dayFromPath(r)
	if !ok {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}

	var req AssignRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("assign workout, read body: %s", err)
		http.Error(w, "assign workout failed", http.StatusBadRequest)
		return
	}

	workout, err := h.catalog.Get(ctx, userID, req.WorkoutID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "assign workout")
		return
	}
	a, err := h.ledger.Assign(ctx, userID, day, *workout)
	if err != nil {
		apperrors.WriteHTTP(w, err, "assign workout")
		return
	}
	pkg.WriteJSON(w, a, http.StatusCreated)
}

func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assignments.unassign")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	day, dayOK := dayFromPath(r)
	id, idOK := idFromPath(r)
	if !dayOK || !idOK {
		http.Error(w, "invalid day or id", http.StatusBadRequest)
		return
	}

	if err := h.ledger.Unassign(ctx, userID, day, id); err != nil {
		apperrors.WriteHTTP(w, err, "unassign workout")
		return
	}
	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (h *Handler) HandleSetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assignments.setStats")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	day, dayOK := dayFromPath(r)
	id, idOK := idFromPath(r)
	if !dayOK || !idOK {
		http.Error(w, "invalid day or id", http.StatusBadRequest)
		return
	}

	var stats Stats
	if err := pkg.ReadJSON(r, &stats); err != nil {
		log.Errorf("set stats, read body: %s", err)
		http.Error(w, "set stats failed", http.StatusBadRequest)
		return
	}

	if err := h.ledger.SetStats(ctx, userID, day, id, stats); err != nil {
		apperrors.WriteHTTP(w, err, "set stats")
		return
	}
	pkg.WriteJSON(w, AssignmentStatsResponse{Stats: stats, Display: FormatStats(stats)}, http.StatusOK)
}

func (h *Handler) HandleSetTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assignments.setTime")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}
	day, dayOK := dayFromPath(r)
	id, idOK := idFromPath(r)
	if !dayOK || !idOK {
		http.Error(w, "invalid day or id", http.StatusBadRequest)
		return
	}

	var req SetTimeRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("set time, read body: %s", err)
		http.Error(w, "set time failed", http.StatusBadRequest)
		return
	}

	times, err := h.ledger.SetSetTime(ctx, userID, day, id, req.Set, req.Time)
	if err != nil {
		apperrors.WriteHTTP(w, err, "set time")
		return
	}
	pkg.WriteJSON(w, times, http.StatusOK)
}
