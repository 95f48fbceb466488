package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/http/middleware"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
)

type saleHandler struct {
	*responder
	saleSvc service.SaleService
}

func newSaleHandler(rs *responder, saleSvc service.SaleService) *saleHandler {
	return &saleHandler{
		responder: rs,
		saleSvc:   saleSvc,
	}
}

type createSaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Discount  decimal.Decimal `json:"discount"`
}

type createSaleRequest struct {
	CustomerID     *uuid.UUID              `json:"customer_id"`
	Items          []createSaleItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	PaymentMethod  model.PaymentMethod     `json:"payment_method" validate:"required,enum"`
	AmountPaid     decimal.Decimal         `json:"amount_paid"`
}

type salesSummaryResponse struct {
	Summary   repository.TodaySummary          `json:"summary"`
	Breakdown []repository.PaymentBreakdownRow `json:"payment_breakdown"`
}

func (h *saleHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, r, apperr.ErrMissingToken)
		return
	}

	var req createSaleRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	items := make([]service.CreateSaleItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateSaleItemParams{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		})
	}

	sale, err := h.saleSvc.CreateSale(r.Context(), service.CreateSaleParams{
		CustomerID:     req.CustomerID,
		CashierID:      claims.UserID,
		Items:          items,
		DiscountAmount: req.DiscountAmount,
		PaymentMethod:  req.PaymentMethod,
		AmountPaid:     req.AmountPaid,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, sale)
}

func (h *saleHandler) refund(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	sale, err := h.saleSvc.Refund(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, sale)
}

func (h *saleHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	sale, err := h.saleSvc.GetSale(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, sale)
}

func (h *saleHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := saleFilterFromQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	sales, err := h.saleSvc.ListSales(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, sales)
}

func (h *saleHandler) summaryToday(w http.ResponseWriter, r *http.Request) {
	summary, breakdown, err := h.saleSvc.SummaryToday(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, salesSummaryResponse{Summary: summary, Breakdown: breakdown})
}

func saleFilterFromQuery(r *http.Request) (repository.SaleFilter, error) {
	var filter repository.SaleFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return repository.SaleFilter{}, apperr.ValidationErr.WithMsg("invalid from date").WrapParent(err)
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return repository.SaleFilter{}, apperr.ValidationErr.WithMsg("invalid to date").WrapParent(err)
		}
		filter.To = &t
	}
	if v := q.Get("cashier_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return repository.SaleFilter{}, apperr.ValidationErr.WithMsg("invalid cashier_id").WrapParent(err)
		}
		filter.CashierID = &id
	}

	return filter, nil
}
