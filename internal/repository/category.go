package repository

import (
	"context"
	"fmt"

	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository

	Create(ctx context.Context, category model.Category) error
	List(ctx context.Context) ([]model.Category, error)
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) Create(ctx context.Context, category model.Category) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, category.ID, category.Name, category.Description, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", classify(err))
	}

	return nil
}

func (r categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, created_at FROM categories ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}
