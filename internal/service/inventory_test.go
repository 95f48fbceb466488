package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalicha-dev28/boutique-pos/internal/event"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/pkg/ptr"
)

type inventoryFixture struct {
	stockRepo  *fakeStockRepo
	outboxRepo *fakeOutboxRepo
	svc        InventoryService
}

func newInventoryFixture(t *testing.T, productID uuid.UUID, quantity int) *inventoryFixture {
	t.Helper()

	f := &inventoryFixture{
		stockRepo:  newFakeStockRepo(),
		outboxRepo: &fakeOutboxRepo{},
	}
	f.stockRepo.records[productID] = model.StockRecord{ProductID: productID, Quantity: quantity}

	fdb := &fakeDB{participants: []txFake{f.stockRepo, f.outboxRepo}}
	f.svc = NewInventoryService(fdb, f.stockRepo, f.outboxRepo)

	return f
}

func TestAdjustRestockAddsAndRecordsAudit(t *testing.T) {
	productID := uuid.New()
	f := newInventoryFixture(t, productID, 10)
	actorID := uuid.New()

	result, err := f.svc.Adjust(context.Background(), AdjustStockParams{
		ProductID: productID,
		Type:      model.AdjustmentRestock,
		Quantity:  5,
		Reason:    ptr.New("weekly delivery"),
		ActorID:   actorID,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, result.PreviousQuantity)
	assert.Equal(t, 15, result.NewQuantity)
	assert.Equal(t, 15, f.stockRepo.records[productID].Quantity)

	require.Len(t, f.stockRepo.adjustments, 1)
	adj := f.stockRepo.adjustments[0]
	assert.Equal(t, model.AdjustmentRestock, adj.Type)
	assert.Equal(t, 5, adj.Quantity)
	assert.Equal(t, actorID, adj.AdjustedBy)

	require.Len(t, f.outboxRepo.msgs, 1)
	assert.Equal(t, event.TopicStockAdjusted, f.outboxRepo.msgs[0].Topic)
}

func TestAdjustSubtractiveTypes(t *testing.T) {
	for _, typ := range []model.AdjustmentType{
		model.AdjustmentDamage, model.AdjustmentLoss, model.AdjustmentCorrection,
	} {
		t.Run(string(typ), func(t *testing.T) {
			productID := uuid.New()
			f := newInventoryFixture(t, productID, 10)

			result, err := f.svc.Adjust(context.Background(), AdjustStockParams{
				ProductID: productID,
				Type:      typ,
				Quantity:  4,
				ActorID:   uuid.New(),
			})
			require.NoError(t, err)
			assert.Equal(t, 6, result.NewQuantity)
		})
	}
}

func TestAdjustCannotDriveStockNegative(t *testing.T) {
	productID := uuid.New()
	f := newInventoryFixture(t, productID, 3)

	_, err := f.svc.Adjust(context.Background(), AdjustStockParams{
		ProductID: productID,
		Type:      model.AdjustmentDamage,
		Quantity:  5,
		ActorID:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_STOCK", errCode(t, err))

	assert.Equal(t, 3, f.stockRepo.records[productID].Quantity)
	assert.Empty(t, f.stockRepo.adjustments)
	assert.Empty(t, f.outboxRepo.msgs)
}

func TestAdjustValidation(t *testing.T) {
	productID := uuid.New()
	f := newInventoryFixture(t, productID, 10)

	_, err := f.svc.Adjust(context.Background(), AdjustStockParams{
		ProductID: productID,
		Type:      "shrinkage",
		Quantity:  1,
		ActorID:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = f.svc.Adjust(context.Background(), AdjustStockParams{
		ProductID: productID,
		Type:      model.AdjustmentRestock,
		Quantity:  0,
		ActorID:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestAdjustUnknownProduct(t *testing.T) {
	f := newInventoryFixture(t, uuid.New(), 10)

	_, err := f.svc.Adjust(context.Background(), AdjustStockParams{
		ProductID: uuid.New(),
		Type:      model.AdjustmentRestock,
		Quantity:  1,
		ActorID:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, "STOCK_NOT_FOUND", errCode(t, err))
}

func TestUpdateReorderLevel(t *testing.T) {
	productID := uuid.New()
	f := newInventoryFixture(t, productID, 10)

	rec, err := f.svc.UpdateReorderLevel(context.Background(), productID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, rec.ReorderLevel)

	_, err = f.svc.UpdateReorderLevel(context.Background(), productID, -1)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}
