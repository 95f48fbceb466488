package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/event"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
	"github.com/qalicha-dev28/boutique-pos/pkg/outbox"
	"github.com/qalicha-dev28/boutique-pos/pkg/ptr"
)

type AdjustStockParams struct {
	ProductID uuid.UUID
	Type      model.AdjustmentType
	Quantity  int
	Reason    *string
	ActorID   uuid.UUID
}

type AdjustStockResult struct {
	PreviousQuantity int
	NewQuantity      int
	Adjustment       model.StockAdjustment
}

type InventoryService interface {
	// Adjust applies one manual stock adjustment: the quantity change and
	// its audit row commit together or not at all.
	Adjust(ctx context.Context, params AdjustStockParams) (AdjustStockResult, error)
	UpdateReorderLevel(ctx context.Context, productID uuid.UUID, level int) (model.StockRecord, error)

	List(ctx context.Context) ([]repository.InventoryRow, error)
	ListLowStock(ctx context.Context) ([]repository.InventoryRow, error)
	ListExpiring(ctx context.Context, days int) ([]repository.InventoryRow, error)
	ListAdjustments(ctx context.Context, limit int32) ([]repository.AdjustmentRow, error)
}

type inventoryService struct {
	db            db.DB
	stockRepo     repository.StockRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewInventoryService(
	db db.DB,
	stockRepo repository.StockRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) InventoryService {
	return &inventoryService{
		db:            db,
		stockRepo:     stockRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *inventoryService) Adjust(ctx context.Context, params AdjustStockParams) (AdjustStockResult, error) {
	if err := params.Type.Validate(); err != nil {
		return AdjustStockResult{}, apperr.ValidationErr.WithMsg("invalid adjustment type").WrapParent(err)
	}
	if params.Quantity <= 0 {
		return AdjustStockResult{}, apperr.ValidationErr.WithMsg("quantity must be positive")
	}

	delta := params.Quantity
	if !params.Type.Additive() {
		delta = -params.Quantity
	}

	adjustmentID, err := uuid.NewV7()
	if err != nil {
		return AdjustStockResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	var result AdjustStockResult
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		adjusted, err := s.stockRepo.WithDB(tx).AdjustQuantity(ctx, params.ProductID, delta)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return apperr.ErrInsufficientStock.WrapParent(err)
			case errors.Is(err, repository.ErrNotFound):
				return apperr.ErrStockNotFound.WrapParent(err)
			default:
				return fmt.Errorf("adjust stock quantity: %w", err)
			}
		}

		adjustment := model.StockAdjustment{
			ID:         adjustmentID,
			ProductID:  params.ProductID,
			Type:       params.Type,
			Quantity:   params.Quantity,
			Reason:     params.Reason,
			AdjustedBy: params.ActorID,
			CreatedAt:  time.Now(),
		}
		if err := s.stockRepo.WithDB(tx).CreateAdjustment(ctx, adjustment); err != nil {
			return fmt.Errorf("record stock adjustment: %w", err)
		}

		payload, err := json.Marshal(event.StockAdjustedEvent{
			ProductID:        params.ProductID.String(),
			Type:             string(params.Type),
			Quantity:         params.Quantity,
			PreviousQuantity: adjusted.PreviousQuantity,
			NewQuantity:      adjusted.NewQuantity,
			AdjustedBy:       params.ActorID.String(),
		})
		if err != nil {
			return fmt.Errorf("marshal stock adjusted event: %w", err)
		}
		if err := s.outboxMsgRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicStockAdjusted,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: ptr.New(params.ProductID.String()),
		}); err != nil {
			return fmt.Errorf("create outbox msg: %w", err)
		}

		result = AdjustStockResult{
			PreviousQuantity: adjusted.PreviousQuantity,
			NewQuantity:      adjusted.NewQuantity,
			Adjustment:       adjustment,
		}

		return nil
	}); err != nil {
		return AdjustStockResult{}, err
	}

	return result, nil
}

func (s *inventoryService) UpdateReorderLevel(ctx context.Context, productID uuid.UUID, level int) (model.StockRecord, error) {
	if level < 0 {
		return model.StockRecord{}, apperr.ValidationErr.WithMsg("reorder level must not be negative")
	}

	rec, err := s.stockRepo.UpdateReorderLevel(ctx, productID, level)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.StockRecord{}, apperr.ErrStockNotFound.WrapParent(err)
		}
		return model.StockRecord{}, fmt.Errorf("update reorder level: %w", err)
	}

	return rec, nil
}

func (s *inventoryService) List(ctx context.Context) ([]repository.InventoryRow, error) {
	rows, err := s.stockRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	return rows, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]repository.InventoryRow, error) {
	rows, err := s.stockRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return rows, nil
}

func (s *inventoryService) ListExpiring(ctx context.Context, days int) ([]repository.InventoryRow, error) {
	if days <= 0 {
		days = 30
	}

	rows, err := s.stockRepo.ListExpiring(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("list expiring stock: %w", err)
	}

	return rows, nil
}

func (s *inventoryService) ListAdjustments(ctx context.Context, limit int32) ([]repository.AdjustmentRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := s.stockRepo.ListAdjustments(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}

	return rows, nil
}
