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

type SaleFilter struct {
	From      *time.Time
	To        *time.Time
	CashierID *uuid.UUID
}

// SaleListRow is a sale joined with cashier/customer names for listing.
type SaleListRow struct {
	model.Sale
	CashierName  string  `json:"cashier_name"`
	CustomerName *string `json:"customer_name"`
	ItemsCount   int     `json:"items_count"`
}

// TodaySummary aggregates today's completed sales. Sums are null when no
// sale has been recorded yet.
type TodaySummary struct {
	TotalTransactions int64               `json:"total_transactions"`
	TotalRevenue      decimal.NullDecimal `json:"total_revenue"`
	TotalDiscounts    decimal.NullDecimal `json:"total_discounts"`
	TotalTax          decimal.NullDecimal `json:"total_tax"`
	AverageSale       decimal.NullDecimal `json:"average_sale"`
}

type PaymentBreakdownRow struct {
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Count         int64               `json:"count"`
	Amount        decimal.Decimal     `json:"amount"`
}

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository

	Create(ctx context.Context, sale model.Sale) error
	CreateItems(ctx context.Context, items []model.SaleItem) error
	CreatePayment(ctx context.Context, payment model.Payment) error

	Get(ctx context.Context, id uuid.UUID) (model.Sale, error)
	// GetForUpdate locks the sale row so a concurrent refund of the same
	// sale serializes behind this transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (model.Sale, error)
	GetItems(ctx context.Context, saleID uuid.UUID) ([]model.SaleItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus) error

	List(ctx context.Context, filter SaleFilter) ([]SaleListRow, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error)
	SummaryToday(ctx context.Context) (TodaySummary, []PaymentBreakdownRow, error)
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `
	id, customer_id, cashier_id, subtotal, discount_amount, tax_amount,
	total, amount_paid, change_amount, payment_method, status, created_at
`

func (r saleRepository) Create(ctx context.Context, sale model.Sale) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, sale.ID, sale.CustomerID, sale.CashierID, sale.Subtotal, sale.DiscountAmount, sale.TaxAmount,
		sale.Total, sale.AmountPaid, sale.ChangeAmount, sale.PaymentMethod, sale.Status, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", classify(err))
	}

	return nil
}

func (r saleRepository) CreateItems(ctx context.Context, items []model.SaleItem) error {
	for _, item := range items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, discount, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Discount, item.Total)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", classify(err))
		}
	}

	return nil
}

func (r saleRepository) CreatePayment(ctx context.Context, payment model.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (id, sale_id, method, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, payment.ID, payment.SaleID, payment.Method, payment.Amount, payment.Status, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", classify(err))
	}

	return nil
}

func (r saleRepository) Get(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

func (r saleRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r saleRepository) get(ctx context.Context, query string, args ...any) (model.Sale, error) {
	var s model.Sale
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.CustomerID, &s.CashierID, &s.Subtotal, &s.DiscountAmount, &s.TaxAmount,
		&s.Total, &s.AmountPaid, &s.ChangeAmount, &s.PaymentMethod, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		return model.Sale{}, fmt.Errorf("select sale: %w", classify(err))
	}

	return s, nil
}

func (r saleRepository) GetItems(ctx context.Context, saleID uuid.UUID) ([]model.SaleItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, discount, total
		FROM sale_items
		WHERE sale_id = $1
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("select sale items: %w", err)
	}
	defer rows.Close()

	var items []model.SaleItem
	for rows.Next() {
		var item model.SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.Discount, &item.Total,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}

	return items, nil
}

func (r saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sales SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update sale status: %w", ErrNotFound)
	}

	return nil
}

func (r saleRepository) List(ctx context.Context, filter SaleFilter) ([]SaleListRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.customer_id, s.cashier_id, s.subtotal, s.discount_amount, s.tax_amount,
		       s.total, s.amount_paid, s.change_amount, s.payment_method, s.status, s.created_at,
		       u.name, c.name, COUNT(si.id)
		FROM sales s
		JOIN users u ON s.cashier_id = u.id
		LEFT JOIN customers c ON s.customer_id = c.id
		LEFT JOIN sale_items si ON s.id = si.sale_id
		WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR s.created_at <= $2)
		  AND ($3::uuid IS NULL OR s.cashier_id = $3)
		GROUP BY s.id, u.name, c.name
		ORDER BY s.created_at DESC
	`, filter.From, filter.To, filter.CashierID)
	if err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	defer rows.Close()

	var sales []SaleListRow
	for rows.Next() {
		var row SaleListRow
		if err := rows.Scan(
			&row.ID, &row.CustomerID, &row.CashierID, &row.Subtotal, &row.DiscountAmount, &row.TaxAmount,
			&row.Total, &row.AmountPaid, &row.ChangeAmount, &row.PaymentMethod, &row.Status, &row.CreatedAt,
			&row.CashierName, &row.CustomerName, &row.ItemsCount,
		); err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		sales = append(sales, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return sales, nil
}

func (r saleRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE customer_id = $1 ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("select customer sales: %w", err)
	}

	return scanSales(rows)
}

func scanSales(rows pgx.Rows) ([]model.Sale, error) {
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		var s model.Sale
		if err := rows.Scan(
			&s.ID, &s.CustomerID, &s.CashierID, &s.Subtotal, &s.DiscountAmount, &s.TaxAmount,
			&s.Total, &s.AmountPaid, &s.ChangeAmount, &s.PaymentMethod, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return sales, nil
}

func (r saleRepository) SummaryToday(ctx context.Context) (TodaySummary, []PaymentBreakdownRow, error) {
	var summary TodaySummary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), SUM(total), SUM(discount_amount), SUM(tax_amount), AVG(total)
		FROM sales
		WHERE created_at::date = CURRENT_DATE AND status = 'completed'
	`).Scan(
		&summary.TotalTransactions, &summary.TotalRevenue, &summary.TotalDiscounts,
		&summary.TotalTax, &summary.AverageSale,
	)
	if err != nil {
		return TodaySummary{}, nil, fmt.Errorf("select today summary: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT payment_method, COUNT(*), SUM(total)
		FROM sales
		WHERE created_at::date = CURRENT_DATE AND status = 'completed'
		GROUP BY payment_method
	`)
	if err != nil {
		return TodaySummary{}, nil, fmt.Errorf("select payment breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []PaymentBreakdownRow
	for rows.Next() {
		var row PaymentBreakdownRow
		if err := rows.Scan(&row.PaymentMethod, &row.Count, &row.Amount); err != nil {
			return TodaySummary{}, nil, fmt.Errorf("scan payment breakdown row: %w", err)
		}
		breakdown = append(breakdown, row)
	}
	if err := rows.Err(); err != nil {
		return TodaySummary{}, nil, fmt.Errorf("iterate payment breakdown rows: %w", err)
	}

	return summary, breakdown, nil
}
