package report

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/bodega-inventory/internal/transport"
)

type ServiceAPI interface {
	General(ctx context.Context) (*GeneralStats, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
	WriteInventoryCSV(ctx context.Context, w io.Writer) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// General handles GET /api/reports/general
func (h *Handler) General(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.General(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, stats)
}

// Dashboard handles GET /api/dashboard/stats
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, stats)
}

// Export handles GET /api/reports/export. The CSV is buffered so a failure
// still produces a JSON error instead of a truncated file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Service.WriteInventoryCSV(r.Context(), &buf); err != nil {
		h.WriteAppError(w, err)
		return
	}

	filename := "inventory-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Warn("export: client went away", "error", err)
	}
}
