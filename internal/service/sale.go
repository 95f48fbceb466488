package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/config"
	"github.com/qalicha-dev28/boutique-pos/internal/event"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/pricing"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
	"github.com/qalicha-dev28/boutique-pos/pkg/outbox"
	"github.com/qalicha-dev28/boutique-pos/pkg/ptr"
)

type CreateSaleItemParams struct {
	ProductID uuid.UUID
	Quantity  int
	Discount  decimal.Decimal
}

type CreateSaleParams struct {
	CustomerID     *uuid.UUID
	CashierID      uuid.UUID
	Items          []CreateSaleItemParams
	DiscountAmount decimal.Decimal
	PaymentMethod  model.PaymentMethod
	AmountPaid     decimal.Decimal
}

type SaleService interface {
	// CreateSale runs the whole sale pipeline: validation, stock deduction,
	// pricing, persistence of sale/items/payment, loyalty accrual and the
	// outbox event, all inside one transaction. Any failure rolls the
	// entire sale back.
	CreateSale(ctx context.Context, params CreateSaleParams) (model.Sale, error)
	// Refund restores stock for every item of a completed sale and flips
	// its status to refunded, atomically. A second refund fails.
	Refund(ctx context.Context, saleID uuid.UUID) (model.Sale, error)

	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) ([]repository.SaleListRow, error)
	SummaryToday(ctx context.Context) (repository.TodaySummary, []repository.PaymentBreakdownRow, error)
}

type saleService struct {
	db            db.DB
	cfg           config.POS
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	stockRepo     repository.StockRepository
	customerRepo  repository.CustomerRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewSaleService(
	db db.DB,
	cfg config.POS,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	customerRepo repository.CustomerRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) SaleService {
	return &saleService{
		db:            db,
		cfg:           cfg,
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		customerRepo:  customerRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *saleService) CreateSale(ctx context.Context, params CreateSaleParams) (model.Sale, error) {
	if len(params.Items) == 0 {
		return model.Sale{}, apperr.ValidationErr.WithMsg("sale must have at least one item")
	}
	if err := params.PaymentMethod.Validate(); err != nil {
		return model.Sale{}, apperr.ValidationErr.WithMsg("payment method is required").WrapParent(err)
	}
	for _, item := range params.Items {
		if item.Quantity <= 0 {
			return model.Sale{}, apperr.ValidationErr.WithMsg("item quantity must be positive")
		}
		if item.Discount.IsNegative() {
			return model.Sale{}, apperr.ValidationErr.WithMsg("item discount must not be negative")
		}
	}

	saleID, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	var sale model.Sale
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		lineItems := make([]pricing.LineItem, 0, len(params.Items))
		saleItems := make([]model.SaleItem, 0, len(params.Items))

		// Check and deduct stock per item, in submission order. The row
		// lock taken by AdjustQuantity serializes concurrent sales of the
		// same product; a failure here rolls back every earlier deduction.
		for _, item := range params.Items {
			product, err := s.productRepo.WithDB(tx).GetActive(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperr.ErrProductNotFound.WithMsg("product not found: %s", item.ProductID).WrapParent(err)
				}
				return fmt.Errorf("get product: %w", err)
			}

			if _, err := s.stockRepo.WithDB(tx).AdjustQuantity(ctx, item.ProductID, -item.Quantity); err != nil {
				switch {
				case errors.Is(err, repository.ErrInsufficientStock):
					return apperr.ErrInsufficientStock.WithMsg("insufficient stock for: %s", product.Name).WrapParent(err)
				case errors.Is(err, repository.ErrNotFound):
					return apperr.ErrStockNotFound.WithMsg("no inventory for: %s", product.Name).WrapParent(err)
				default:
					return fmt.Errorf("deduct stock: %w", err)
				}
			}

			lineItems = append(lineItems, pricing.LineItem{
				UnitPrice: product.SellingPrice,
				Quantity:  item.Quantity,
				Discount:  item.Discount,
			})

			itemID, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate uuid v7: %w", err)
			}
			saleItems = append(saleItems, model.SaleItem{
				ID:        itemID,
				SaleID:    saleID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.SellingPrice,
				Discount:  item.Discount,
			})
		}

		quote, err := pricing.Calculate(lineItems, params.DiscountAmount, params.AmountPaid, s.cfg.TaxRate)
		if err != nil {
			if errors.Is(err, pricing.ErrNegativeLineTotal) {
				return apperr.ValidationErr.WithMsg("item discount exceeds line total").WrapParent(err)
			}
			return fmt.Errorf("calculate pricing: %w", err)
		}
		for i := range saleItems {
			saleItems[i].Total = quote.LineTotals[i]
		}

		now := time.Now()
		sale = model.Sale{
			ID:             saleID,
			CustomerID:     params.CustomerID,
			CashierID:      params.CashierID,
			Subtotal:       quote.Subtotal,
			DiscountAmount: params.DiscountAmount,
			TaxAmount:      quote.TaxAmount,
			Total:          quote.Total,
			AmountPaid:     params.AmountPaid,
			ChangeAmount:   quote.Change,
			PaymentMethod:  params.PaymentMethod,
			Status:         model.SaleStatusCompleted,
			CreatedAt:      now,
		}

		saleRepo := s.saleRepo.WithDB(tx)
		if err := saleRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := saleRepo.CreateItems(ctx, saleItems); err != nil {
			return fmt.Errorf("create sale items: %w", err)
		}

		paymentID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate uuid v7: %w", err)
		}
		if err := saleRepo.CreatePayment(ctx, model.Payment{
			ID:        paymentID,
			SaleID:    saleID,
			Method:    params.PaymentMethod,
			Amount:    params.AmountPaid,
			Status:    model.PaymentStatusCompleted,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if params.CustomerID != nil {
			points := pricing.LoyaltyPoints(quote.Total, s.cfg.LoyaltyDivisor)
			if _, err := s.customerRepo.WithDB(tx).AddLoyaltyPoints(ctx, *params.CustomerID, points); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperr.ErrCustomerNotFound.WrapParent(err)
				}
				return fmt.Errorf("add loyalty points: %w", err)
			}
		}

		sale.Items = saleItems

		if err := s.enqueueSaleCompleted(ctx, tx, sale); err != nil {
			return fmt.Errorf("enqueue sale completed event: %w", err)
		}

		return nil
	}); err != nil {
		return model.Sale{}, err
	}

	return sale, nil
}

func (s *saleService) Refund(ctx context.Context, saleID uuid.UUID) (model.Sale, error) {
	var sale model.Sale
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		saleRepo := s.saleRepo.WithDB(tx)

		var err error
		sale, err = saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.ErrSaleNotFound.WrapParent(err)
			}
			return fmt.Errorf("get sale: %w", err)
		}

		if sale.Status == model.SaleStatusRefunded {
			return apperr.ErrAlreadyRefunded
		}

		items, err := saleRepo.GetItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("get sale items: %w", err)
		}

		for _, item := range items {
			if _, err := s.stockRepo.WithDB(tx).AdjustQuantity(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		if err := saleRepo.UpdateStatus(ctx, saleID, model.SaleStatusRefunded); err != nil {
			return fmt.Errorf("mark sale refunded: %w", err)
		}
		sale.Status = model.SaleStatusRefunded
		sale.Items = items

		payload, err := json.Marshal(event.SaleRefundedEvent{SaleID: saleID.String()})
		if err != nil {
			return fmt.Errorf("marshal sale refunded event: %w", err)
		}
		if err := s.outboxMsgRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicSaleRefunded,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: ptr.New(saleID.String()),
		}); err != nil {
			return fmt.Errorf("create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Sale{}, err
	}

	return sale, nil
}

func (s *saleService) enqueueSaleCompleted(ctx context.Context, tx db.DB, sale model.Sale) error {
	ev := event.SaleCompletedEvent{
		SaleID:        sale.ID.String(),
		CashierID:     sale.CashierID.String(),
		Total:         sale.Total.StringFixed(2),
		PaymentMethod: string(sale.PaymentMethod),
		Items:         make([]event.SaleItemSnapshot, 0, len(sale.Items)),
	}
	if sale.CustomerID != nil {
		ev.CustomerID = ptr.New(sale.CustomerID.String())
	}
	for _, item := range sale.Items {
		ev.Items = append(ev.Items, event.SaleItemSnapshot{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Total:     item.Total.StringFixed(2),
		})
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        event.TopicSaleCompleted,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: ptr.New(sale.ID.String()),
	}); err != nil {
		return fmt.Errorf("create outbox msg: %w", err)
	}

	return nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := s.saleRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Sale{}, apperr.ErrSaleNotFound.WrapParent(err)
		}
		return model.Sale{}, fmt.Errorf("get sale: %w", err)
	}

	items, err := s.saleRepo.GetItems(ctx, id)
	if err != nil {
		return model.Sale{}, fmt.Errorf("get sale items: %w", err)
	}
	sale.Items = items

	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]repository.SaleListRow, error) {
	sales, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return sales, nil
}

func (s *saleService) SummaryToday(ctx context.Context) (repository.TodaySummary, []repository.PaymentBreakdownRow, error) {
	summary, breakdown, err := s.saleRepo.SummaryToday(ctx)
	if err != nil {
		return repository.TodaySummary{}, nil, fmt.Errorf("summary today: %w", err)
	}

	return summary, breakdown, nil
}
