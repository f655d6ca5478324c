package profile

import (
	"net/http"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	repo *Repo
	now  func() time.Time
}

func NewHandler(repo *Repo, now func() time.Time) *Handler {
	return &Handler{
		repo: repo,
		now:  now,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.Get(ctx, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, "get profile")
		return
	}
	pkg.WriteJSON(w, p, http.StatusOK)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.update")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var update Update
	if err := pkg.ReadJSON(r, &update); err != nil {
		log.Errorf("update profile, read body: %s", err)
		http.Error(w, "invalid profile data", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Update(ctx, userID, update, days.FromTime(h.now()))
	if err != nil {
		apperrors.WriteHTTP(w, err, "update profile")
		return
	}

	log.Debugf("profile updated for user %s", userID)
	pkg.WriteJSON(w, p, http.StatusOK)
}
