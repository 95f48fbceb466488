package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalicha-dev28/boutique-pos/internal/config"
	"github.com/qalicha-dev28/boutique-pos/internal/event"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/pkg/zerror"
)

type saleFixture struct {
	stockRepo    *fakeStockRepo
	productRepo  *fakeProductRepo
	customerRepo *fakeCustomerRepo
	saleRepo     *fakeSaleRepo
	outboxRepo   *fakeOutboxRepo
	svc          SaleService
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()

	f := &saleFixture{
		stockRepo:    newFakeStockRepo(),
		productRepo:  newFakeProductRepo(),
		customerRepo: newFakeCustomerRepo(),
		saleRepo:     newFakeSaleRepo(),
		outboxRepo:   &fakeOutboxRepo{},
	}

	fdb := &fakeDB{participants: []txFake{f.stockRepo, f.customerRepo, f.saleRepo, f.outboxRepo}}
	cfg := config.POS{
		TaxRate:        decimal.RequireFromString("0.16"),
		LoyaltyDivisor: decimal.RequireFromString("100"),
	}

	f.svc = NewSaleService(fdb, cfg, f.saleRepo, f.productRepo, f.stockRepo, f.customerRepo, f.outboxRepo)
	return f
}

func (f *saleFixture) addProduct(t *testing.T, price string, stock int) uuid.UUID {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)

	f.productRepo.products[id] = model.Product{
		ID:           id,
		Name:         "product-" + id.String()[:8],
		SellingPrice: decimal.RequireFromString(price),
		IsActive:     true,
	}
	f.stockRepo.records[id] = model.StockRecord{ProductID: id, Quantity: stock}

	return id
}

func (f *saleFixture) addCustomer(t *testing.T) uuid.UUID {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)
	f.customerRepo.customers[id] = model.Customer{ID: id, Name: "Amina", IsActive: true}

	return id
}

func errCode(t *testing.T, err error) string {
	t.Helper()

	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	return zErr.Code()
}

func TestCreateSaleComputesTotalsAndDeductsStock(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)
	customerID := f.addCustomer(t)
	cashierID := uuid.New()

	sale, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CustomerID:    &customerID,
		CashierID:     cashierID,
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 3}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("400"),
	})
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(decimal.RequireFromString("300")), "subtotal %s", sale.Subtotal)
	assert.True(t, sale.TaxAmount.Equal(decimal.RequireFromString("48")), "tax %s", sale.TaxAmount)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("348")), "total %s", sale.Total)
	assert.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("52")), "change %s", sale.ChangeAmount)
	assert.Equal(t, model.SaleStatusCompleted, sale.Status)

	assert.Equal(t, 7, f.stockRepo.records[productID].Quantity)

	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].Total.Equal(decimal.RequireFromString("300")))

	require.Len(t, f.saleRepo.payments, 1)
	assert.True(t, f.saleRepo.payments[0].Amount.Equal(decimal.RequireFromString("400")))

	// one point per 100 of total, floored
	assert.Equal(t, 3, f.customerRepo.customers[customerID].LoyaltyPoints)

	require.Len(t, f.outboxRepo.msgs, 1)
	assert.Equal(t, event.TopicSaleCompleted, f.outboxRepo.msgs[0].Topic)
}

func TestCreateSaleUnderPaymentHasZeroChange(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)

	sale, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 1}},
		PaymentMethod: model.PaymentCard,
		AmountPaid:    decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	assert.True(t, sale.ChangeAmount.IsZero(), "change %s", sale.ChangeAmount)
}

func TestCreateSaleInsufficientStockRollsBackEverything(t *testing.T) {
	f := newSaleFixture(t)
	okProduct := f.addProduct(t, "50", 10)
	scarceProduct := f.addProduct(t, "20", 1)

	_, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID: uuid.New(),
		Items: []CreateSaleItemParams{
			{ProductID: okProduct, Quantity: 2},
			{ProductID: scarceProduct, Quantity: 5},
		},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("500"),
	})
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_STOCK", errCode(t, err))

	// the first item's deduction must not survive the failed sale
	assert.Equal(t, 10, f.stockRepo.records[okProduct].Quantity)
	assert.Equal(t, 1, f.stockRepo.records[scarceProduct].Quantity)
	assert.Empty(t, f.saleRepo.sales)
	assert.Empty(t, f.saleRepo.payments)
	assert.Empty(t, f.outboxRepo.msgs)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("10"),
	})
	require.Error(t, err)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errCode(t, err))
}

func TestCreateSaleSoftDeletedProductRejected(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)
	require.NoError(t, f.productRepo.SoftDelete(context.Background(), productID))

	_, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 1}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("200"),
	})
	require.Error(t, err)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errCode(t, err))
	assert.Equal(t, 10, f.stockRepo.records[productID].Quantity)
}

func TestCreateSaleValidation(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "10", 5)

	tests := []struct {
		name   string
		params CreateSaleParams
	}{
		{
			name: "no items",
			params: CreateSaleParams{
				CashierID:     uuid.New(),
				PaymentMethod: model.PaymentCash,
			},
		},
		{
			name: "unknown payment method",
			params: CreateSaleParams{
				CashierID:     uuid.New(),
				Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 1}},
				PaymentMethod: "barter",
			},
		},
		{
			name: "zero quantity",
			params: CreateSaleParams{
				CashierID:     uuid.New(),
				Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 0}},
				PaymentMethod: model.PaymentCash,
			},
		},
		{
			name: "negative item discount",
			params: CreateSaleParams{
				CashierID: uuid.New(),
				Items: []CreateSaleItemParams{
					{ProductID: productID, Quantity: 1, Discount: decimal.RequireFromString("-1")},
				},
				PaymentMethod: model.PaymentCash,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSale(context.Background(), tt.params)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
		})
	}

	// nothing deducted by any rejected sale
	assert.Equal(t, 5, f.stockRepo.records[productID].Quantity)
}

func TestCreateSaleItemDiscountExceedsLineTotal(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "10", 5)

	_, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID: uuid.New(),
		Items: []CreateSaleItemParams{
			{ProductID: productID, Quantity: 1, Discount: decimal.RequireFromString("15")},
		},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("10"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	assert.Equal(t, 5, f.stockRepo.records[productID].Quantity)
}

func TestRefundRestoresStockAndFlipsStatus(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)

	sale, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 4}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("500"),
	})
	require.NoError(t, err)
	require.Equal(t, 6, f.stockRepo.records[productID].Quantity)

	refunded, err := f.svc.Refund(context.Background(), sale.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SaleStatusRefunded, refunded.Status)
	assert.Equal(t, 10, f.stockRepo.records[productID].Quantity)
	assert.Equal(t, model.SaleStatusRefunded, f.saleRepo.sales[sale.ID].Status)

	require.Len(t, f.outboxRepo.msgs, 2)
	assert.Equal(t, event.TopicSaleRefunded, f.outboxRepo.msgs[1].Topic)
}

func TestRefundTwiceRejected(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)

	sale, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 2}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("300"),
	})
	require.NoError(t, err)

	_, err = f.svc.Refund(context.Background(), sale.ID)
	require.NoError(t, err)

	_, err = f.svc.Refund(context.Background(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, "ALREADY_REFUNDED", errCode(t, err))

	// stock restored exactly once
	assert.Equal(t, 10, f.stockRepo.records[productID].Quantity)
}

func TestRefundUnknownSale(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.Refund(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "SALE_NOT_FOUND", errCode(t, err))
}

func TestCreateSaleWithoutCustomerSkipsLoyalty(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)
	customerID := f.addCustomer(t)

	_, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 1}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("200"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, f.customerRepo.customers[customerID].LoyaltyPoints)
}

func TestCreateSaleUnknownCustomerRollsBack(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.addProduct(t, "100", 10)
	ghost := uuid.New()

	_, err := f.svc.CreateSale(context.Background(), CreateSaleParams{
		CustomerID:    &ghost,
		CashierID:     uuid.New(),
		Items:         []CreateSaleItemParams{{ProductID: productID, Quantity: 1}},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    decimal.RequireFromString("200"),
	})
	require.Error(t, err)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", errCode(t, err))

	assert.Equal(t, 10, f.stockRepo.records[productID].Quantity)
	assert.Empty(t, f.saleRepo.sales)
}
