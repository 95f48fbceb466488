package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

type CreateProductParams struct {
	Name         string
	Sku          *string
	Barcode      *string
	CategoryID   *uuid.UUID
	Description  *string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	TaxRate      decimal.Decimal
	ImageURL     *string

	InitialStock int
	ReorderLevel int
	ExpiryDate   *time.Time
}

type CreateCategoryParams struct {
	Name        string
	Description *string
}

type ProductService interface {
	// CreateProduct inserts the product and its stock record together.
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params repository.UpdateProductParams) (model.Product, error)
	// DeleteProduct soft-deletes: the product disappears from catalog reads
	// but historical sales keep referencing it.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error)
}

type productService struct {
	db           db.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	stockRepo    repository.StockRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	stockRepo repository.StockRepository,
) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		stockRepo:    stockRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if params.SellingPrice.IsNegative() || params.CostPrice.IsNegative() {
		return model.Product{}, apperr.ValidationErr.WithMsg("prices must not be negative")
	}
	if params.InitialStock < 0 {
		return model.Product{}, apperr.ValidationErr.WithMsg("initial stock must not be negative")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:           id,
		Name:         params.Name,
		Sku:          params.Sku,
		Barcode:      params.Barcode,
		CategoryID:   params.CategoryID,
		Description:  params.Description,
		CostPrice:    params.CostPrice,
		SellingPrice: params.SellingPrice,
		TaxRate:      params.TaxRate,
		ImageURL:     params.ImageURL,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).Create(ctx, product); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return apperr.ErrDuplicateProduct.WrapParent(err)
			}
			return fmt.Errorf("create product: %w", err)
		}

		if err := s.stockRepo.WithDB(tx).Create(ctx, model.StockRecord{
			ProductID:    id,
			Quantity:     params.InitialStock,
			ReorderLevel: params.ReorderLevel,
			ExpiryDate:   params.ExpiryDate,
			UpdatedAt:    now,
		}); err != nil {
			return fmt.Errorf("create stock record: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ErrProductNotFound.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params repository.UpdateProductParams) (model.Product, error) {
	product, err := s.productRepo.Update(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.Product{}, apperr.ErrProductNotFound.WrapParent(err)
		case errors.Is(err, repository.ErrUniqueViolation):
			return model.Product{}, apperr.ErrDuplicateProduct.WrapParent(err)
		default:
			return model.Product{}, fmt.Errorf("update product: %w", err)
		}
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrProductNotFound.WrapParent(err)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

func (s *productService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	if query == "" {
		return nil, apperr.ValidationErr.WithMsg("search query is required")
	}

	products, err := s.productRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	return products, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (s *productService) CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Category{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	category := model.Category{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return model.Category{}, apperr.ErrDuplicateCategory.WrapParent(err)
		}
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}
