package event

import (
	"context"
	"log/slog"
)

const (
	TopicSaleCompleted = "pos.sale.completed"
	TopicSaleRefunded  = "pos.sale.refunded"
)

type SaleItemSnapshot struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

type SaleCompletedEvent struct {
	SaleID        string             `json:"sale_id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	CashierID     string             `json:"cashier_id"`
	Total         string             `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Items         []SaleItemSnapshot `json:"items"`
}

type SaleRefundedEvent struct {
	SaleID string `json:"sale_id"`
}

// handleSaleCompleted is the receipt/analytics extension point; for now it
// only records the sale.
func (s *Service) handleSaleCompleted(ctx context.Context, ev SaleCompletedEvent) error {
	s.logger.InfoContext(ctx, "sale completed",
		slog.String("sale_id", ev.SaleID),
		slog.String("total", ev.Total),
		slog.String("payment_method", ev.PaymentMethod),
		slog.Int("items", len(ev.Items)),
	)
	return nil
}

func (s *Service) handleSaleRefunded(ctx context.Context, ev SaleRefundedEvent) error {
	s.logger.InfoContext(ctx, "sale refunded", slog.String("sale_id", ev.SaleID))
	return nil
}
