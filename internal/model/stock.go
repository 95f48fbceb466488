package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StockRecord is the authoritative on-hand quantity for one product.
// Quantity is mutated only through the stock repository, never directly.
type StockRecord struct {
	ProductID    uuid.UUID  `json:"product_id"`
	Quantity     int        `json:"quantity"`
	ReorderLevel int        `json:"reorder_level"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type AdjustmentType string

const (
	AdjustmentRestock    AdjustmentType = "restock"
	AdjustmentReturn     AdjustmentType = "return"
	AdjustmentDamage     AdjustmentType = "damage"
	AdjustmentLoss       AdjustmentType = "loss"
	AdjustmentCorrection AdjustmentType = "correction"
)

func (t AdjustmentType) Validate() error {
	switch t {
	case AdjustmentRestock, AdjustmentReturn, AdjustmentDamage, AdjustmentLoss, AdjustmentCorrection:
		return nil
	default:
		return fmt.Errorf("unknown adjustment type: %s", t)
	}
}

// Additive reports whether the type adds stock; the remaining types subtract.
func (t AdjustmentType) Additive() bool {
	return t == AdjustmentRestock || t == AdjustmentReturn
}

// StockAdjustment is an append-only audit entry for a manual stock change.
type StockAdjustment struct {
	ID         uuid.UUID      `json:"id"`
	ProductID  uuid.UUID      `json:"product_id"`
	Type       AdjustmentType `json:"type"`
	Quantity   int            `json:"quantity"`
	Reason     *string        `json:"reason"`
	AdjustedBy uuid.UUID      `json:"adjusted_by"`
	CreatedAt  time.Time      `json:"created_at"`
}
