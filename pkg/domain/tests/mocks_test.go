package tests

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

// memoryStore backs every mock repository. The mock unit of work snapshots
// it before running a transaction body and restores it when the body fails,
// which makes rollback behaviour observable in tests.
type memoryStore struct {
	carts    map[uuid.UUID]*model.Cart
	orders   map[uuid.UUID]*model.Order
	products map[uuid.UUID]*model.Product
	reviews  map[uuid.UUID]*model.Review
	users    map[uuid.UUID]*model.User

	failOrderCreate error
	failCartUpdate  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		carts:    make(map[uuid.UUID]*model.Cart),
		orders:   make(map[uuid.UUID]*model.Order),
		products: make(map[uuid.UUID]*model.Product),
		reviews:  make(map[uuid.UUID]*model.Review),
		users:    make(map[uuid.UUID]*model.User),
	}
}

func (s *memoryStore) snapshot() *memoryStore {
	clone := newMemoryStore()
	for id, cart := range s.carts {
		clone.carts[id] = cloneCart(cart)
	}
	for id, order := range s.orders {
		clone.orders[id] = cloneOrder(order)
	}
	for id, product := range s.products {
		clone.products[id] = cloneProduct(product)
	}
	for id, review := range s.reviews {
		c := *review
		clone.reviews[id] = &c
	}
	for id, user := range s.users {
		clone.users[id] = cloneUser(user)
	}
	return clone
}

func (s *memoryStore) restore(from *memoryStore) {
	s.carts = from.carts
	s.orders = from.orders
	s.products = from.products
	s.reviews = from.reviews
	s.users = from.users
}

func cloneCart(cart *model.Cart) *model.Cart {
	clone := *cart
	clone.Items = append([]model.CartItem(nil), cart.Items...)
	return &clone
}

func cloneOrder(order *model.Order) *model.Order {
	clone := *order
	clone.Lines = append([]model.OrderLine(nil), order.Lines...)
	if order.PaidAt != nil {
		paidAt := *order.PaidAt
		clone.PaidAt = &paidAt
	}
	if order.DeliveredAt != nil {
		deliveredAt := *order.DeliveredAt
		clone.DeliveredAt = &deliveredAt
	}
	if order.PaymentResult != nil {
		result := *order.PaymentResult
		clone.PaymentResult = &result
	}
	return &clone
}

func cloneProduct(product *model.Product) *model.Product {
	clone := *product
	clone.Images = append([]string(nil), product.Images...)
	return &clone
}

func cloneUser(user *model.User) *model.User {
	clone := *user
	if user.Address != nil {
		address := *user.Address
		clone.Address = &address
	}
	return &clone
}

var _ model.RepositoryProvider = &mockProvider{}

type mockProvider struct {
	store *memoryStore
}

func (p *mockProvider) Carts() model.CartRepository       { return &mockCartRepository{store: p.store} }
func (p *mockProvider) Orders() model.OrderRepository     { return &mockOrderRepository{store: p.store} }
func (p *mockProvider) Products() model.ProductRepository { return &mockProductRepository{store: p.store} }
func (p *mockProvider) Reviews() model.ReviewRepository   { return &mockReviewRepository{store: p.store} }
func (p *mockProvider) Users() model.UserRepository       { return &mockUserRepository{store: p.store} }

var _ model.UnitOfWork = &mockUnitOfWork{}

type mockUnitOfWork struct {
	store *memoryStore
}

func (u *mockUnitOfWork) Execute(fn func(provider model.RepositoryProvider) error) error {
	backup := u.store.snapshot()
	if err := fn(&mockProvider{store: u.store}); err != nil {
		u.store.restore(backup)
		return err
	}
	return nil
}

var _ model.CartRepository = &mockCartRepository{}

type mockCartRepository struct {
	store *memoryStore
}

func (m *mockCartRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockCartRepository) Create(cart *model.Cart) error {
	if _, exists := m.store.carts[cart.ID]; exists {
		return errors.New("cart with this ID already exists")
	}
	m.store.carts[cart.ID] = cloneCart(cart)
	return nil
}

func (m *mockCartRepository) FindByIdentity(identity model.Identity) (*model.Cart, error) {
	for _, cart := range m.store.carts {
		if identity.Authenticated() {
			if cart.UserID == identity.UserID {
				return cloneCart(cart), nil
			}
		} else if cart.UserID == uuid.Nil && cart.SessionCartID == identity.SessionCartID {
			return cloneCart(cart), nil
		}
	}
	return nil, model.ErrCartNotFound
}

func (m *mockCartRepository) Update(cart *model.Cart) error {
	if m.store.failCartUpdate != nil {
		return m.store.failCartUpdate
	}
	existing, ok := m.store.carts[cart.ID]
	if !ok {
		return model.ErrCartNotFound
	}
	if existing.Version != cart.Version-1 {
		return model.ErrOptimisticLock
	}
	m.store.carts[cart.ID] = cloneCart(cart)
	return nil
}

func (m *mockCartRepository) Delete(id uuid.UUID) error {
	if _, ok := m.store.carts[id]; !ok {
		return model.ErrCartNotFound
	}
	delete(m.store.carts, id)
	return nil
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store *memoryStore
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockOrderRepository) Create(order *model.Order) error {
	if m.store.failOrderCreate != nil {
		return m.store.failOrderCreate
	}
	if _, exists := m.store.orders[order.ID]; exists {
		return errors.New("order with this ID already exists")
	}
	m.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *mockOrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	order, ok := m.store.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (m *mockOrderRepository) FindByUser(userID uuid.UUID) ([]*model.Order, error) {
	var orders []*model.Order
	for _, order := range m.store.orders {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) Update(order *model.Order) error {
	existing, ok := m.store.orders[order.ID]
	if !ok {
		return model.ErrOrderNotFound
	}
	if existing.Version != order.Version-1 {
		return model.ErrOptimisticLock
	}
	m.store.orders[order.ID] = cloneOrder(order)
	return nil
}

var _ model.ProductRepository = &mockProductRepository{}

type mockProductRepository struct {
	store *memoryStore
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockProductRepository) Create(product *model.Product) error {
	if _, exists := m.store.products[product.ID]; exists {
		return errors.New("product with this ID already exists")
	}
	m.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (m *mockProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	product, ok := m.store.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

func (m *mockProductRepository) FindBySlug(slug string) (*model.Product, error) {
	for _, product := range m.store.products {
		if product.Slug == slug {
			return cloneProduct(product), nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (m *mockProductRepository) ListLatest(limit int) ([]*model.Product, error) {
	var products []*model.Product
	for _, product := range m.store.products {
		if len(products) == limit {
			break
		}
		products = append(products, cloneProduct(product))
	}
	return products, nil
}

func (m *mockProductRepository) Update(product *model.Product) error {
	existing, ok := m.store.products[product.ID]
	if !ok {
		return model.ErrProductNotFound
	}
	if existing.Version != product.Version-1 {
		return model.ErrOptimisticLock
	}
	m.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (m *mockProductRepository) DecrementStock(productID uuid.UUID, qty int) error {
	product, ok := m.store.products[productID]
	if !ok {
		return model.ErrProductNotFound
	}
	// Mirrors the SQL "stock = stock - ?": no floor check here.
	product.Stock -= qty
	return nil
}

var _ model.ReviewRepository = &mockReviewRepository{}

type mockReviewRepository struct {
	store *memoryStore
}

func (m *mockReviewRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockReviewRepository) Create(review *model.Review) error {
	clone := *review
	m.store.reviews[review.ID] = &clone
	return nil
}

func (m *mockReviewRepository) Update(review *model.Review) error {
	if _, ok := m.store.reviews[review.ID]; !ok {
		return model.ErrReviewNotFound
	}
	clone := *review
	m.store.reviews[review.ID] = &clone
	return nil
}

func (m *mockReviewRepository) Find(id uuid.UUID) (*model.Review, error) {
	review, ok := m.store.reviews[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	clone := *review
	return &clone, nil
}

func (m *mockReviewRepository) FindByProductAndUser(productID, userID uuid.UUID) (*model.Review, error) {
	for _, review := range m.store.reviews {
		if review.ProductID == productID && review.UserID == userID {
			clone := *review
			return &clone, nil
		}
	}
	return nil, model.ErrReviewNotFound
}

func (m *mockReviewRepository) ListByProduct(productID uuid.UUID) ([]*model.Review, error) {
	var reviews []*model.Review
	for _, review := range m.store.reviews {
		if review.ProductID == productID {
			clone := *review
			reviews = append(reviews, &clone)
		}
	}
	return reviews, nil
}

func (m *mockReviewRepository) AggregateByProduct(productID uuid.UUID) (decimal.Decimal, int, error) {
	sum, count := 0, 0
	for _, review := range m.store.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, 0, nil
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count))), count, nil
}

func (m *mockReviewRepository) Delete(id uuid.UUID) error {
	if _, ok := m.store.reviews[id]; !ok {
		return model.ErrReviewNotFound
	}
	delete(m.store.reviews, id)
	return nil
}

var _ model.UserRepository = &mockUserRepository{}

type mockUserRepository struct {
	store *memoryStore
}

func (m *mockUserRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockUserRepository) Create(user *model.User) error {
	if _, exists := m.store.users[user.ID]; exists {
		return errors.New("user with this ID already exists")
	}
	m.store.users[user.ID] = cloneUser(user)
	return nil
}

func (m *mockUserRepository) Update(user *model.User) error {
	if _, ok := m.store.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	m.store.users[user.ID] = cloneUser(user)
	return nil
}

func (m *mockUserRepository) Find(id uuid.UUID) (*model.User, error) {
	user, ok := m.store.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (m *mockUserRepository) FindByEmail(email string) (*model.User, error) {
	for _, user := range m.store.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, model.ErrUserNotFound
}

var _ service.EventDispatcher = &mockEventDispatcher{}

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
