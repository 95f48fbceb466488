package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

type UpdateUserParams struct {
	Name     *string
	Role     *model.Role
	IsActive *bool
}

type UserRepository interface {
	WithDB(db db.DB) UserRepository

	Create(ctx context.Context, user model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (model.User, error)
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password, role, is_active, created_at, updated_at`

func (r userRepository) Create(ctx context.Context, user model.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Name, user.Email, user.Password, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", classify(err))
	}

	return nil
}

func (r userRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r userRepository) get(ctx context.Context, query string, args ...any) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("select user: %w", classify(err))
	}

	return u, nil
}

func (r userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r userRepository) Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, `
		UPDATE users SET
			name       = COALESCE($2, name),
			role       = COALESCE($3, role),
			is_active  = COALESCE($4, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, params.Name, params.Role, params.IsActive).Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", classify(err))
	}

	return u, nil
}
