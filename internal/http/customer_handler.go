package http

import (
	"net/http"
	"time"

	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
)

type customerHandler struct {
	*responder
	customerSvc service.CustomerService
}

func newCustomerHandler(rs *responder, customerSvc service.CustomerService) *customerHandler {
	return &customerHandler{
		responder:   rs,
		customerSvc: customerSvc,
	}
}

type createCustomerRequest struct {
	Name     string     `json:"name" validate:"required"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email" validate:"omitempty,email"`
	Birthday *time.Time `json:"birthday"`
	Notes    *string    `json:"notes"`
}

type updateCustomerRequest struct {
	Name     *string    `json:"name"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email" validate:"omitempty,email"`
	Birthday *time.Time `json:"birthday"`
	Notes    *string    `json:"notes"`
}

type creditPointsRequest struct {
	Points int `json:"points" validate:"required,gt=0"`
}

func (h *customerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	customer, err := h.customerSvc.CreateCustomer(r.Context(), service.CreateCustomerParams{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Birthday: req.Birthday,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, customer)
}

func (h *customerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	customer, err := h.customerSvc.GetCustomer(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, customer)
}

func (h *customerHandler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerSvc.ListCustomers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, customers)
}

func (h *customerHandler) search(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerSvc.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, customers)
}

func (h *customerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req updateCustomerRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	customer, err := h.customerSvc.UpdateCustomer(r.Context(), id, repository.UpdateCustomerParams{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Birthday: req.Birthday,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, customer)
}

func (h *customerHandler) creditPoints(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req creditPointsRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	customer, err := h.customerSvc.CreditLoyaltyPoints(r.Context(), id, req.Points)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, customer)
}

func (h *customerHandler) purchaseHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	sales, err := h.customerSvc.PurchaseHistory(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, sales)
}
