package transfer

import (
	"net/http"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	log "github.com/sirupsen/logrus"
)

type ImportResponse struct {
	Imported int `json:"imported"`
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

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.transfer.export")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	doc, err := h.service.Export(ctx, userID, h.now())
	if err != nil {
		apperrors.WriteHTTP(w, err, "export data")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="betterlife-export.json"`)
	pkg.WriteJSON(w, doc, http.StatusOK)
}

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.transfer.import")
	defer span.End()

	userID, ok := auth.RequireUserID(w, r)
	if !ok {
		return
	}

	var doc Document
	if err := pkg.ReadJSON(r, &doc); err != nil {
		log.Errorf("import data, read body: %s", err)
		http.Error(w, "import data failed", http.StatusBadRequest)
		return
	}

	if err := h.service.Import(ctx, userID, doc); err != nil {
		apperrors.WriteHTTP(w, err, "import data")
		return
	}
	pkg.WriteJSON(w, ImportResponse{Imported: len(doc.Data)}, http.StatusOK)
}
