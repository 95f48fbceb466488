package event

import (
	"context"
	"log/slog"
)

const TopicStockAdjusted = "pos.stock.adjusted"

type StockAdjustedEvent struct {
	ProductID        string `json:"product_id"`
	Type             string `json:"type"`
	Quantity         int    `json:"quantity"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	AdjustedBy       string `json:"adjusted_by"`
}

func (s *Service) handleStockAdjusted(ctx context.Context, ev StockAdjustedEvent) error {
	s.logger.InfoContext(ctx, "stock adjusted",
		slog.String("product_id", ev.ProductID),
		slog.String("type", ev.Type),
		slog.Int("previous_quantity", ev.PreviousQuantity),
		slog.Int("new_quantity", ev.NewQuantity),
	)
	return nil
}
