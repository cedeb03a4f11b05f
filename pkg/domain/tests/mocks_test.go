package tests

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"posservice/pkg/domain/model"
	"posservice/pkg/domain/service"
)

// --- Product repository ---

type mockProductRepository struct {
	store map[uuid.UUID]*model.Product

	// decrementErr simulates another sale winning the stock race between
	// validation and commit.
	decrementErr error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{store: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockProductRepository) Create(_ context.Context, product *model.Product) error {
	val := *product
	m.store[product.ID] = &val
	return nil
}

func (m *mockProductRepository) Update(_ context.Context, product *model.Product) error {
	existing, ok := m.store[product.ID]
	if !ok {
		return model.ErrProductNotFound
	}
	if existing.Version != product.Version-1 {
		return model.ErrOptimisticLock
	}
	val := *product
	m.store[product.ID] = &val
	return nil
}

func (m *mockProductRepository) Find(_ context.Context, id uuid.UUID) (*model.Product, error) {
	product, ok := m.store[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	val := *product
	return &val, nil
}

func (m *mockProductRepository) FindAvailable(_ context.Context) ([]*model.Product, error) {
	products := make([]*model.Product, 0, len(m.store))
	for _, product := range m.store {
		if product.Status != model.Available {
			continue
		}
		val := *product
		products = append(products, &val)
	}
	return products, nil
}

func (m *mockProductRepository) Search(_ context.Context, query string) ([]*model.Product, error) {
	var products []*model.Product
	query = strings.ToLower(query)
	for _, product := range m.store {
		if product.Status != model.Available {
			continue
		}
		if strings.Contains(strings.ToLower(product.Name), query) ||
			strings.Contains(strings.ToLower(product.Description), query) {
			val := *product
			products = append(products, &val)
		}
	}
	return products, nil
}

func (m *mockProductRepository) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	if m.decrementErr != nil {
		return m.decrementErr
	}
	product, ok := m.store[id]
	if !ok {
		return model.ErrProductNotFound
	}
	if product.Status != model.Available {
		return model.ErrProductUnavailable
	}
	if product.StockQuantity < quantity {
		return model.ErrStockConflict
	}
	product.StockQuantity -= quantity
	product.Version++
	return nil
}

// --- Customer repository ---

type mockCustomerRepository struct {
	store map[uuid.UUID]*model.Customer
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{store: make(map[uuid.UUID]*model.Customer)}
}

func (m *mockCustomerRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockCustomerRepository) Create(_ context.Context, customer *model.Customer) error {
	val := *customer
	m.store[customer.ID] = &val
	return nil
}

func (m *mockCustomerRepository) Update(_ context.Context, customer *model.Customer) error {
	existing, ok := m.store[customer.ID]
	if !ok {
		return model.ErrCustomerNotFound
	}
	if existing.Version != customer.Version-1 {
		return model.ErrOptimisticLock
	}
	val := *customer
	m.store[customer.ID] = &val
	return nil
}

func (m *mockCustomerRepository) Find(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, ok := m.store[id]
	if !ok {
		return nil, model.ErrCustomerNotFound
	}
	val := *customer
	return &val, nil
}

func (m *mockCustomerRepository) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	for _, customer := range m.store {
		if customer.Phone == phone {
			val := *customer
			return &val, nil
		}
	}
	return nil, model.ErrCustomerNotFound
}

func (m *mockCustomerRepository) AdjustLoyaltyPoints(_ context.Context, id uuid.UUID, delta int64) error {
	customer, ok := m.store[id]
	if !ok {
		return model.ErrCustomerNotFound
	}
	if customer.LoyaltyPoints+delta < 0 {
		return model.ErrInsufficientPoints
	}
	customer.LoyaltyPoints += delta
	customer.Version++
	return nil
}

func (m *mockCustomerRepository) SettleLoyalty(_ context.Context, id uuid.UUID, earned, redeemed int64) error {
	customer, ok := m.store[id]
	if !ok {
		return model.ErrCustomerNotFound
	}
	if customer.LoyaltyPoints < redeemed {
		return model.ErrInsufficientPoints
	}
	customer.LoyaltyPoints += earned - redeemed
	customer.Version++
	return nil
}

// --- Sale repository ---

type mockSaleRepository struct {
	store []*model.Sale

	createErr error
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{store: make([]*model.Sale, 0)}
}

func (m *mockSaleRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockSaleRepository) Create(_ context.Context, sale *model.Sale) error {
	if m.createErr != nil {
		return m.createErr
	}
	val := *sale
	m.store = append(m.store, &val)
	return nil
}

func (m *mockSaleRepository) Find(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, sale := range m.store {
		if sale.ID == id {
			val := *sale
			return &val, nil
		}
	}
	return nil, model.ErrSaleNotFound
}

func (m *mockSaleRepository) FindAll(_ context.Context, limit, offset int) ([]*model.Sale, error) {
	if offset >= len(m.store) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.store) {
		end = len(m.store)
	}
	sales := make([]*model.Sale, 0, end-offset)
	for _, sale := range m.store[offset:end] {
		val := *sale
		sales = append(sales, &val)
	}
	return sales, nil
}

func (m *mockSaleRepository) Count(_ context.Context) (int, error) {
	return len(m.store), nil
}

// --- Webhook repository ---

type mockWebhookRepository struct {
	store map[uuid.UUID]*model.Webhook
}

func newMockWebhookRepository() *mockWebhookRepository {
	return &mockWebhookRepository{store: make(map[uuid.UUID]*model.Webhook)}
}

func (m *mockWebhookRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *mockWebhookRepository) Create(_ context.Context, webhook *model.Webhook) error {
	val := *webhook
	m.store[webhook.ID] = &val
	return nil
}

func (m *mockWebhookRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return model.ErrWebhookNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockWebhookRepository) Find(_ context.Context, id uuid.UUID) (*model.Webhook, error) {
	webhook, ok := m.store[id]
	if !ok {
		return nil, model.ErrWebhookNotFound
	}
	val := *webhook
	return &val, nil
}

func (m *mockWebhookRepository) FindAll(_ context.Context) ([]*model.Webhook, error) {
	webhooks := make([]*model.Webhook, 0, len(m.store))
	for _, webhook := range m.store {
		val := *webhook
		webhooks = append(webhooks, &val)
	}
	return webhooks, nil
}

func (m *mockWebhookRepository) FindActive(_ context.Context) ([]*model.Webhook, error) {
	var webhooks []*model.Webhook
	for _, webhook := range m.store {
		if !webhook.Active {
			continue
		}
		val := *webhook
		webhooks = append(webhooks, &val)
	}
	return webhooks, nil
}

// --- Unit of work ---

// mockUnitOfWork mimics transaction semantics: all repository state is
// snapshotted before fn runs and restored when fn fails, so a failed commit
// leaves no partial effects, same as a database rollback.
type mockUnitOfWork struct {
	products  *mockProductRepository
	customers *mockCustomerRepository
	sales     *mockSaleRepository

	// beforeExecute simulates a concurrent transaction committing between
	// validation and this unit of work.
	beforeExecute func()
}

func (m *mockUnitOfWork) Products() model.ProductRepository   { return m.products }
func (m *mockUnitOfWork) Customers() model.CustomerRepository { return m.customers }
func (m *mockUnitOfWork) Sales() model.SaleRepository         { return m.sales }

func (m *mockUnitOfWork) Execute(_ context.Context, fn func(r model.Repositories) error) error {
	if m.beforeExecute != nil {
		m.beforeExecute()
	}

	productSnap := make(map[uuid.UUID]*model.Product, len(m.products.store))
	for id, product := range m.products.store {
		val := *product
		productSnap[id] = &val
	}
	customerSnap := make(map[uuid.UUID]*model.Customer, len(m.customers.store))
	for id, customer := range m.customers.store {
		val := *customer
		customerSnap[id] = &val
	}
	saleCount := len(m.sales.store)

	if err := fn(m); err != nil {
		m.products.store = productSnap
		m.customers.store = customerSnap
		m.sales.store = m.sales.store[:saleCount]
		return err
	}
	return nil
}

// --- Event dispatcher ---

type mockEventDispatcher struct {
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
