package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/http/middleware"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
)

type inventoryHandler struct {
	*responder
	inventorySvc service.InventoryService
}

func newInventoryHandler(rs *responder, inventorySvc service.InventoryService) *inventoryHandler {
	return &inventoryHandler{
		responder:    rs,
		inventorySvc: inventorySvc,
	}
}

type adjustStockRequest struct {
	ProductID uuid.UUID            `json:"product_id" validate:"required"`
	Type      model.AdjustmentType `json:"type" validate:"required,enum"`
	Quantity  int                  `json:"quantity" validate:"required,gt=0"`
	Reason    *string              `json:"reason"`
}

type reorderLevelRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	ReorderLevel int       `json:"reorder_level" validate:"gte=0"`
}

func (h *inventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, r, apperr.ErrMissingToken)
		return
	}

	var req adjustStockRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.inventorySvc.Adjust(r.Context(), service.AdjustStockParams{
		ProductID: req.ProductID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		ActorID:   claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

func (h *inventoryHandler) updateReorderLevel(w http.ResponseWriter, r *http.Request) {
	var req reorderLevelRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	rec, err := h.inventorySvc.UpdateReorderLevel(r.Context(), req.ProductID, req.ReorderLevel)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, rec)
}

func (h *inventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventorySvc.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, rows)
}

func (h *inventoryHandler) listLowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventorySvc.ListLowStock(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, rows)
}

func (h *inventoryHandler) listExpiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	rows, err := h.inventorySvc.ListExpiring(r.Context(), days)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, rows)
}

func (h *inventoryHandler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.inventorySvc.ListAdjustments(r.Context(), int32(limit))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, rows)
}
