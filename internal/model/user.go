package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleManager         Role = "manager"
	RoleCashier         Role = "cashier"
	RoleStockController Role = "stock_controller"
)

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleStockController:
		return nil
	default:
		return fmt.Errorf("unknown role: %s", r)
	}
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
