package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
)

type productHandler struct {
	*responder
	productSvc service.ProductService
}

func newProductHandler(rs *responder, productSvc service.ProductService) *productHandler {
	return &productHandler{
		responder:  rs,
		productSvc: productSvc,
	}
}

type createProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Sku          *string         `json:"sku"`
	Barcode      *string         `json:"barcode"`
	CategoryID   *uuid.UUID      `json:"category_id"`
	Description  *string         `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"required"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	ImageURL     *string         `json:"image_url"`
	InitialStock int             `json:"initial_stock" validate:"gte=0"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

type updateProductRequest struct {
	Name         *string    `json:"name"`
	Sku          *string    `json:"sku"`
	Barcode      *string    `json:"barcode"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Description  *string    `json:"description"`
	CostPrice    *string    `json:"cost_price"`
	SellingPrice *string    `json:"selling_price"`
	TaxRate      *string    `json:"tax_rate"`
	ImageURL     *string    `json:"image_url"`
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:         req.Name,
		Sku:          req.Sku,
		Barcode:      req.Barcode,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		TaxRate:      req.TaxRate,
		ImageURL:     req.ImageURL,
		InitialStock: req.InitialStock,
		ReorderLevel: req.ReorderLevel,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, product)
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, product)
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, repository.UpdateProductParams{
		Name:         req.Name,
		Sku:          req.Sku,
		Barcode:      req.Barcode,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		TaxRate:      req.TaxRate,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, product)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusNoContent, nil)
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListProducts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, products)
}

func (h *productHandler) search(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, products)
}

func (h *productHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productSvc.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, categories)
}

func (h *productHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	category, err := h.productSvc.CreateCategory(r.Context(), service.CreateCategoryParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, category)
}
