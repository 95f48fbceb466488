package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

// AdjustResult reports a stock quantity before and after one atomic change.
type AdjustResult struct {
	PreviousQuantity int
	NewQuantity      int
}

// InventoryRow is a stock record joined with its product for listing views.
type InventoryRow struct {
	model.StockRecord
	ProductName  string          `json:"product_name"`
	Sku          *string         `json:"sku"`
	Barcode      *string         `json:"barcode"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CategoryName *string         `json:"category_name"`
}

// AdjustmentRow is an audit entry joined with product and actor names.
type AdjustmentRow struct {
	model.StockAdjustment
	ProductName    string  `json:"product_name"`
	AdjustedByName *string `json:"adjusted_by_name"`
}

// StockRepository owns inventory.quantity. AdjustQuantity is the only write
// path for it and serializes concurrent callers with a row lock, so the
// non-negative invariant holds even when the enclosing transactions race.
type StockRepository interface {
	WithDB(db db.DB) StockRepository

	Create(ctx context.Context, rec model.StockRecord) error
	Get(ctx context.Context, productID uuid.UUID) (model.StockRecord, error)
	AdjustQuantity(ctx context.Context, productID uuid.UUID, delta int) (AdjustResult, error)
	UpdateReorderLevel(ctx context.Context, productID uuid.UUID, level int) (model.StockRecord, error)

	List(ctx context.Context) ([]InventoryRow, error)
	ListLowStock(ctx context.Context) ([]InventoryRow, error)
	ListExpiring(ctx context.Context, days int) ([]InventoryRow, error)

	CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error
	ListAdjustments(ctx context.Context, limit int32) ([]AdjustmentRow, error)
}

type stockRepository struct {
	db db.DB
}

func NewStockRepository(db db.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r stockRepository) WithDB(db db.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r stockRepository) Create(ctx context.Context, rec model.StockRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory (product_id, quantity, reorder_level, expiry_date, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ProductID, rec.Quantity, rec.ReorderLevel, rec.ExpiryDate, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert stock record: %w", classify(err))
	}

	return nil
}

func (r stockRepository) Get(ctx context.Context, productID uuid.UUID) (model.StockRecord, error) {
	var rec model.StockRecord
	err := r.db.QueryRow(ctx, `
		SELECT product_id, quantity, reorder_level, expiry_date, updated_at
		FROM inventory
		WHERE product_id = $1
	`, productID).Scan(&rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.ExpiryDate, &rec.UpdatedAt)
	if err != nil {
		return model.StockRecord{}, fmt.Errorf("select stock record: %w", classify(err))
	}

	return rec, nil
}

// AdjustQuantity applies a signed delta under a row lock. A delta that would
// drive the quantity negative returns ErrInsufficientStock and writes nothing.
func (r stockRepository) AdjustQuantity(ctx context.Context, productID uuid.UUID, delta int) (AdjustResult, error) {
	var current int
	err := r.db.QueryRow(ctx, `
		SELECT quantity FROM inventory WHERE product_id = $1 FOR UPDATE
	`, productID).Scan(&current)
	if err != nil {
		return AdjustResult{}, fmt.Errorf("lock stock record: %w", classify(err))
	}

	next := current + delta
	if next < 0 {
		return AdjustResult{}, fmt.Errorf("adjust by %d from %d: %w", delta, current, ErrInsufficientStock)
	}

	_, err = r.db.Exec(ctx, `
		UPDATE inventory SET quantity = $1, updated_at = $2 WHERE product_id = $3
	`, next, time.Now(), productID)
	if err != nil {
		return AdjustResult{}, fmt.Errorf("update stock quantity: %w", classify(err))
	}

	return AdjustResult{PreviousQuantity: current, NewQuantity: next}, nil
}

func (r stockRepository) UpdateReorderLevel(ctx context.Context, productID uuid.UUID, level int) (model.StockRecord, error) {
	var rec model.StockRecord
	err := r.db.QueryRow(ctx, `
		UPDATE inventory SET reorder_level = $1, updated_at = $2
		WHERE product_id = $3
		RETURNING product_id, quantity, reorder_level, expiry_date, updated_at
	`, level, time.Now(), productID).Scan(&rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.ExpiryDate, &rec.UpdatedAt)
	if err != nil {
		return model.StockRecord{}, fmt.Errorf("update reorder level: %w", classify(err))
	}

	return rec, nil
}

const inventoryRowColumns = `
	i.product_id, i.quantity, i.reorder_level, i.expiry_date, i.updated_at,
	p.name, p.sku, p.barcode, p.selling_price, c.name
`

func (r stockRepository) List(ctx context.Context) ([]InventoryRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+inventoryRowColumns+`
		FROM inventory i
		JOIN products p ON i.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.is_active = TRUE
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}

	return scanInventoryRows(rows)
}

func (r stockRepository) ListLowStock(ctx context.Context) ([]InventoryRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+inventoryRowColumns+`
		FROM inventory i
		JOIN products p ON i.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE i.quantity <= i.reorder_level AND p.is_active = TRUE
		ORDER BY i.quantity ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select low stock: %w", err)
	}

	return scanInventoryRows(rows)
}

func (r stockRepository) ListExpiring(ctx context.Context, days int) ([]InventoryRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+inventoryRowColumns+`
		FROM inventory i
		JOIN products p ON i.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE i.expiry_date IS NOT NULL
		  AND i.expiry_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		  AND i.expiry_date >= CURRENT_DATE
		  AND p.is_active = TRUE
		ORDER BY i.expiry_date ASC
	`, days)
	if err != nil {
		return nil, fmt.Errorf("select expiring stock: %w", err)
	}

	return scanInventoryRows(rows)
}

func scanInventoryRows(rows pgx.Rows) ([]InventoryRow, error) {
	defer rows.Close()

	var items []InventoryRow
	for rows.Next() {
		var row InventoryRow
		if err := rows.Scan(
			&row.ProductID, &row.Quantity, &row.ReorderLevel, &row.ExpiryDate, &row.UpdatedAt,
			&row.ProductName, &row.Sku, &row.Barcode, &row.SellingPrice, &row.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory rows: %w", err)
	}

	return items, nil
}

func (r stockRepository) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stock_adjustments (id, product_id, type, quantity, reason, adjusted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, adj.ID, adj.ProductID, adj.Type, adj.Quantity, adj.Reason, adj.AdjustedBy, adj.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock adjustment: %w", classify(err))
	}

	return nil
}

func (r stockRepository) ListAdjustments(ctx context.Context, limit int32) ([]AdjustmentRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sa.id, sa.product_id, sa.type, sa.quantity, sa.reason, sa.adjusted_by, sa.created_at,
		       p.name, u.name
		FROM stock_adjustments sa
		JOIN products p ON sa.product_id = p.id
		LEFT JOIN users u ON sa.adjusted_by = u.id
		ORDER BY sa.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select stock adjustments: %w", err)
	}
	defer rows.Close()

	var items []AdjustmentRow
	for rows.Next() {
		var row AdjustmentRow
		if err := rows.Scan(
			&row.ID, &row.ProductID, &row.Type, &row.Quantity, &row.Reason, &row.AdjustedBy, &row.CreatedAt,
			&row.ProductName, &row.AdjustedByName,
		); err != nil {
			return nil, fmt.Errorf("scan stock adjustment row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock adjustment rows: %w", err)
	}

	return items, nil
}
