package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Phone         *string    `json:"phone"`
	Email         *string    `json:"email"`
	Birthday      *time.Time `json:"birthday"`
	Notes         *string    `json:"notes"`
	LoyaltyPoints int        `json:"loyalty_points"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
