package product

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/transport"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	LowStock(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, dto ProductDTO) (*Product, error)
	Update(ctx context.Context, id int64, dto ProductDTO) (*Product, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*InventoryStats, error)
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

// ListProducts handles GET /api/products. A search term additionally needs
// SEARCH_PRODUCTS.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}

	if filter.Search != "" {
		p, ok := h.Principal(w, r)
		if !ok {
			return
		}
		if !p.Can(permission.SearchProducts) {
			h.WriteAppError(w, internal.ErrForbidden)
			return
		}
	}

	products, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, products)
}

// LowStock handles GET /api/products/low-stock
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.LowStock(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, p)
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto ProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	p, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, transport.Envelope{Success: true, Data: p, Message: "product created"})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var dto ProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	p, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transport.Envelope{Success: true, Data: p, Message: "product updated"})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "product deleted")
}

// InventoryStats handles GET /api/inventory/stats
func (h *Handler) InventoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, stats)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteAppError(w, internal.NewValidationError("invalid product id", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}
