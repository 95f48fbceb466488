package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

type UpdateProductParams struct {
	Name         *string
	Sku          *string
	Barcode      *string
	CategoryID   *uuid.UUID
	Description  *string
	CostPrice    *string
	SellingPrice *string
	TaxRate      *string
	ImageURL     *string
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository

	Create(ctx context.Context, product model.Product) error
	Get(ctx context.Context, id uuid.UUID) (model.Product, error)
	// GetActive resolves a product for sale; soft-deleted products are
	// invisible to it.
	GetActive(ctx context.Context, id uuid.UUID) (model.Product, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	id, name, sku, barcode, category_id, description,
	cost_price, selling_price, tax_rate, image_url, is_active, created_at, updated_at
`

func (r productRepository) Create(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, product.ID, product.Name, product.Sku, product.Barcode, product.CategoryID, product.Description,
		product.CostPrice, product.SellingPrice, product.TaxRate, product.ImageURL,
		product.IsActive, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", classify(err))
	}

	return nil
}

func (r productRepository) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r productRepository) GetActive(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active = TRUE`, id)
}

func (r productRepository) get(ctx context.Context, query string, args ...any) (model.Product, error) {
	var p model.Product
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Sku, &p.Barcode, &p.CategoryID, &p.Description,
		&p.CostPrice, &p.SellingPrice, &p.TaxRate, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("select product: %w", classify(err))
	}

	return p, nil
}

func (r productRepository) Update(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	var p model.Product
	err := r.db.QueryRow(ctx, `
		UPDATE products SET
			name          = COALESCE($2, name),
			sku           = COALESCE($3, sku),
			barcode       = COALESCE($4, barcode),
			category_id   = COALESCE($5, category_id),
			description   = COALESCE($6, description),
			cost_price    = COALESCE($7::numeric, cost_price),
			selling_price = COALESCE($8::numeric, selling_price),
			tax_rate      = COALESCE($9::numeric, tax_rate),
			image_url     = COALESCE($10, image_url),
			updated_at    = NOW()
		WHERE id = $1
		RETURNING `+productColumns+`
	`, id, params.Name, params.Sku, params.Barcode, params.CategoryID, params.Description,
		params.CostPrice, params.SellingPrice, params.TaxRate, params.ImageURL,
	).Scan(
		&p.ID, &p.Name, &p.Sku, &p.Barcode, &p.CategoryID, &p.Description,
		&p.CostPrice, &p.SellingPrice, &p.TaxRate, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", classify(err))
	}

	return p, nil
}

func (r productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("soft delete product: %w", ErrNotFound)
	}

	return nil
}

func (r productRepository) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+` FROM products WHERE is_active = TRUE ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	return scanProducts(rows)
}

func (r productRepository) Search(ctx context.Context, query string) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active = TRUE AND (name ILIKE $1 OR sku ILIKE $1 OR barcode ILIKE $1)
		ORDER BY name ASC
	`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Sku, &p.Barcode, &p.CategoryID, &p.Description,
			&p.CostPrice, &p.SellingPrice, &p.TaxRate, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
