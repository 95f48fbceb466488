package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

type UpdateCustomerParams struct {
	Name     *string
	Phone    *string
	Email    *string
	Birthday *time.Time
	Notes    *string
}

type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository

	Create(ctx context.Context, customer model.Customer) error
	Get(ctx context.Context, id uuid.UUID) (model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	Search(ctx context.Context, query string) ([]model.Customer, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (model.Customer, error)
	// AddLoyaltyPoints credits points to the customer's balance; the sale
	// orchestrator calls it inside the sale transaction.
	AddLoyaltyPoints(ctx context.Context, id uuid.UUID, points int) (model.Customer, error)
}

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, phone, email, birthday, notes, loyalty_points, is_active, created_at, updated_at`

func (r customerRepository) Create(ctx context.Context, customer model.Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, customer.ID, customer.Name, customer.Phone, customer.Email, customer.Birthday, customer.Notes,
		customer.LoyaltyPoints, customer.IsActive, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", classify(err))
	}

	return nil
}

func (r customerRepository) Get(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	var c model.Customer
	err := r.db.QueryRow(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Birthday, &c.Notes,
		&c.LoyaltyPoints, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Customer{}, fmt.Errorf("select customer: %w", classify(err))
	}

	return c, nil
}

func (r customerRepository) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE is_active = TRUE ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}

	return scanCustomers(rows)
}

func (r customerRepository) Search(ctx context.Context, query string) ([]model.Customer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE is_active = TRUE AND (name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1)
		ORDER BY name ASC
	`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}

	return scanCustomers(rows)
}

func scanCustomers(rows pgx.Rows) ([]model.Customer, error) {
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Phone, &c.Email, &c.Birthday, &c.Notes,
			&c.LoyaltyPoints, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

func (r customerRepository) Update(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (model.Customer, error) {
	var c model.Customer
	err := r.db.QueryRow(ctx, `
		UPDATE customers SET
			name       = COALESCE($2, name),
			phone      = COALESCE($3, phone),
			email      = COALESCE($4, email),
			birthday   = COALESCE($5, birthday),
			notes      = COALESCE($6, notes),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+customerColumns+`
	`, id, params.Name, params.Phone, params.Email, params.Birthday, params.Notes).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Birthday, &c.Notes,
		&c.LoyaltyPoints, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Customer{}, fmt.Errorf("update customer: %w", classify(err))
	}

	return c, nil
}

func (r customerRepository) AddLoyaltyPoints(ctx context.Context, id uuid.UUID, points int) (model.Customer, error) {
	var c model.Customer
	err := r.db.QueryRow(ctx, `
		UPDATE customers SET
			loyalty_points = loyalty_points + $2,
			updated_at     = NOW()
		WHERE id = $1
		RETURNING `+customerColumns+`
	`, id, points).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Birthday, &c.Notes,
		&c.LoyaltyPoints, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Customer{}, fmt.Errorf("add loyalty points: %w", classify(err))
	}

	return c, nil
}
