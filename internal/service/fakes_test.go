package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
)

// txFake is implemented by fakes that hold mutable state, so fakeDB can roll
// them back when the transaction function fails.
type txFake interface {
	snapshot()
	restore()
}

type fakeDB struct {
	participants []txFake
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("unexpected raw exec in test")
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("unexpected raw query in test")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("unexpected raw query row in test")
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	for _, p := range f.participants {
		p.snapshot()
	}
	if err := txFunc(f); err != nil {
		for _, p := range f.participants {
			p.restore()
		}
		return err
	}
	return nil
}

type fakeStockRepo struct {
	records     map[uuid.UUID]model.StockRecord
	adjustments []model.StockAdjustment

	savedRecords     map[uuid.UUID]model.StockRecord
	savedAdjustments int
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{records: map[uuid.UUID]model.StockRecord{}}
}

func (f *fakeStockRepo) snapshot() {
	f.savedRecords = make(map[uuid.UUID]model.StockRecord, len(f.records))
	for id, rec := range f.records {
		f.savedRecords[id] = rec
	}
	f.savedAdjustments = len(f.adjustments)
}

func (f *fakeStockRepo) restore() {
	f.records = f.savedRecords
	f.adjustments = f.adjustments[:f.savedAdjustments]
}

func (f *fakeStockRepo) WithDB(db.DB) repository.StockRepository { return f }

func (f *fakeStockRepo) Create(_ context.Context, rec model.StockRecord) error {
	f.records[rec.ProductID] = rec
	return nil
}

func (f *fakeStockRepo) Get(_ context.Context, productID uuid.UUID) (model.StockRecord, error) {
	rec, ok := f.records[productID]
	if !ok {
		return model.StockRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStockRepo) AdjustQuantity(_ context.Context, productID uuid.UUID, delta int) (repository.AdjustResult, error) {
	rec, ok := f.records[productID]
	if !ok {
		return repository.AdjustResult{}, repository.ErrNotFound
	}

	next := rec.Quantity + delta
	if next < 0 {
		return repository.AdjustResult{}, fmt.Errorf("adjust by %d from %d: %w", delta, rec.Quantity, repository.ErrInsufficientStock)
	}

	prev := rec.Quantity
	rec.Quantity = next
	rec.UpdatedAt = time.Now()
	f.records[productID] = rec

	return repository.AdjustResult{PreviousQuantity: prev, NewQuantity: next}, nil
}

func (f *fakeStockRepo) UpdateReorderLevel(_ context.Context, productID uuid.UUID, level int) (model.StockRecord, error) {
	rec, ok := f.records[productID]
	if !ok {
		return model.StockRecord{}, repository.ErrNotFound
	}
	rec.ReorderLevel = level
	f.records[productID] = rec
	return rec, nil
}

func (f *fakeStockRepo) List(context.Context) ([]repository.InventoryRow, error) {
	return nil, nil
}

func (f *fakeStockRepo) ListLowStock(context.Context) ([]repository.InventoryRow, error) {
	return nil, nil
}

func (f *fakeStockRepo) ListExpiring(context.Context, int) ([]repository.InventoryRow, error) {
	return nil, nil
}

func (f *fakeStockRepo) CreateAdjustment(_ context.Context, adj model.StockAdjustment) error {
	f.adjustments = append(f.adjustments, adj)
	return nil
}

func (f *fakeStockRepo) ListAdjustments(context.Context, int32) ([]repository.AdjustmentRow, error) {
	rows := make([]repository.AdjustmentRow, 0, len(f.adjustments))
	for _, adj := range f.adjustments {
		rows = append(rows, repository.AdjustmentRow{StockAdjustment: adj})
	}
	return rows, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]model.Product{}}
}

func (f *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return f }

func (f *fakeProductRepo) Create(_ context.Context, product model.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Get(_ context.Context, id uuid.UUID) (model.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) GetActive(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := f.Get(ctx, id)
	if err != nil || !product.IsActive {
		return model.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) Update(context.Context, uuid.UUID, repository.UpdateProductParams) (model.Product, error) {
	return model.Product{}, repository.ErrNotFound
}

func (f *fakeProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	product, ok := f.products[id]
	if !ok || !product.IsActive {
		return repository.ErrNotFound
	}
	product.IsActive = false
	f.products[id] = product
	return nil
}

func (f *fakeProductRepo) List(context.Context) ([]model.Product, error)           { return nil, nil }
func (f *fakeProductRepo) Search(context.Context, string) ([]model.Product, error) { return nil, nil }

type fakeCustomerRepo struct {
	customers      map[uuid.UUID]model.Customer
	savedCustomers map[uuid.UUID]model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[uuid.UUID]model.Customer{}}
}

func (f *fakeCustomerRepo) snapshot() {
	f.savedCustomers = make(map[uuid.UUID]model.Customer, len(f.customers))
	for id, c := range f.customers {
		f.savedCustomers[id] = c
	}
}

func (f *fakeCustomerRepo) restore() { f.customers = f.savedCustomers }

func (f *fakeCustomerRepo) WithDB(db.DB) repository.CustomerRepository { return f }

func (f *fakeCustomerRepo) Create(_ context.Context, customer model.Customer) error {
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomerRepo) Get(_ context.Context, id uuid.UUID) (model.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	return customer, nil
}

func (f *fakeCustomerRepo) List(context.Context) ([]model.Customer, error) { return nil, nil }

func (f *fakeCustomerRepo) Search(context.Context, string) ([]model.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) Update(context.Context, uuid.UUID, repository.UpdateCustomerParams) (model.Customer, error) {
	return model.Customer{}, repository.ErrNotFound
}

func (f *fakeCustomerRepo) AddLoyaltyPoints(_ context.Context, id uuid.UUID, points int) (model.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	customer.LoyaltyPoints += points
	f.customers[id] = customer
	return customer, nil
}

type fakeSaleRepo struct {
	sales    map[uuid.UUID]model.Sale
	items    map[uuid.UUID][]model.SaleItem
	payments []model.Payment

	savedSales    map[uuid.UUID]model.Sale
	savedItems    map[uuid.UUID][]model.SaleItem
	savedPayments int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: map[uuid.UUID]model.Sale{},
		items: map[uuid.UUID][]model.SaleItem{},
	}
}

func (f *fakeSaleRepo) snapshot() {
	f.savedSales = make(map[uuid.UUID]model.Sale, len(f.sales))
	for id, s := range f.sales {
		f.savedSales[id] = s
	}
	f.savedItems = make(map[uuid.UUID][]model.SaleItem, len(f.items))
	for id, items := range f.items {
		f.savedItems[id] = items
	}
	f.savedPayments = len(f.payments)
}

func (f *fakeSaleRepo) restore() {
	f.sales = f.savedSales
	f.items = f.savedItems
	f.payments = f.payments[:f.savedPayments]
}

func (f *fakeSaleRepo) WithDB(db.DB) repository.SaleRepository { return f }

func (f *fakeSaleRepo) Create(_ context.Context, sale model.Sale) error {
	sale.Items = nil
	f.sales[sale.ID] = sale
	return nil
}

func (f *fakeSaleRepo) CreateItems(_ context.Context, items []model.SaleItem) error {
	for _, item := range items {
		f.items[item.SaleID] = append(f.items[item.SaleID], item)
	}
	return nil
}

func (f *fakeSaleRepo) CreatePayment(_ context.Context, payment model.Payment) error {
	f.payments = append(f.payments, payment)
	return nil
}

func (f *fakeSaleRepo) Get(_ context.Context, id uuid.UUID) (model.Sale, error) {
	sale, ok := f.sales[id]
	if !ok {
		return model.Sale{}, repository.ErrNotFound
	}
	return sale, nil
}

func (f *fakeSaleRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	return f.Get(ctx, id)
}

func (f *fakeSaleRepo) GetItems(_ context.Context, saleID uuid.UUID) ([]model.SaleItem, error) {
	return f.items[saleID], nil
}

func (f *fakeSaleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.SaleStatus) error {
	sale, ok := f.sales[id]
	if !ok {
		return repository.ErrNotFound
	}
	sale.Status = status
	f.sales[id] = sale
	return nil
}

func (f *fakeSaleRepo) List(context.Context, repository.SaleFilter) ([]repository.SaleListRow, error) {
	return nil, nil
}

func (f *fakeSaleRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	for _, sale := range f.sales {
		if sale.CustomerID != nil && *sale.CustomerID == customerID {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func (f *fakeSaleRepo) SummaryToday(context.Context) (repository.TodaySummary, []repository.PaymentBreakdownRow, error) {
	return repository.TodaySummary{}, nil, nil
}

type fakeOutboxRepo struct {
	msgs      []repository.CreateOutboxMsgParams
	savedMsgs int
}

func (f *fakeOutboxRepo) snapshot() { f.savedMsgs = len(f.msgs) }
func (f *fakeOutboxRepo) restore()  { f.msgs = f.msgs[:f.savedMsgs] }

func (f *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return f }

func (f *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	f.msgs = append(f.msgs, params)
	return nil
}

func (f *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]model.User{}}
}

func (f *fakeUserRepo) WithDB(db.DB) repository.UserRepository { return f }

func (f *fakeUserRepo) Create(_ context.Context, user model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrUniqueViolation
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserRepo) List(context.Context) ([]model.User, error) { return nil, nil }

func (f *fakeUserRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateUserParams) (model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	f.users[id] = user
	return user, nil
}
