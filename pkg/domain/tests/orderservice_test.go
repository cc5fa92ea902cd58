package tests

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

func setupOrder(t *testing.T) (service.OrderService, *memoryStore, *mockEventDispatcher) {
	store := newMemoryStore()
	dispatcher := &mockEventDispatcher{}
	orderService := service.NewOrderService(&mockUnitOfWork{store: store}, &mockProvider{store: store}, dispatcher)
	return orderService, store, dispatcher
}

func seedUser(store *memoryStore, withAddress bool, paymentMethod string) *model.User {
	now := time.Now().UTC()
	user := &model.User{
		ID:            uuid.New(),
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		Role:          "user",
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if withAddress {
		user.Address = &model.ShippingAddress{
			FullName:      "Jane Doe",
			StreetAddress: "1 Main St",
			City:          "Springfield",
			PostalCode:    "12345",
			Country:       "US",
		}
	}
	store.users[user.ID] = user
	return user
}

func seedCartFor(store *memoryStore, userID uuid.UUID, items []model.CartItem) *model.Cart {
	now := time.Now().UTC()
	cart := &model.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     items,
		Totals:    model.DefaultPricingPolicy().ComputeTotals(items),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	store.carts[cart.ID] = cart
	return cart
}

func TestCreateOrder(t *testing.T) {
	orderService, store, dispatcher := setupOrder(t)
	product := seedProduct(store, "30.00", 5)
	user := seedUser(store, true, "Paypal")
	cart := seedCartFor(store, user.ID, []model.CartItem{
		{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 2},
	})
	identity := model.Identity{UserID: user.ID}

	order, err := orderService.CreateOrder(identity)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 1, order.Version)
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, *user.Address, order.ShippingAddress)
	assert.Equal(t, "Paypal", order.PaymentMethod)
	assert.False(t, order.IsPaid)

	// The order is a snapshot of the cart at creation time.
	require.Len(t, order.Lines, 1)
	assert.Equal(t, product.ID, order.Lines[0].ProductID)
	assert.Equal(t, 2, order.Lines[0].Qty)
	assert.Equal(t, cart.Totals, order.Totals)

	savedOrder, ok := store.orders[order.ID]
	require.True(t, ok)
	assert.Equal(t, order.ID, savedOrder.ID)

	clearedCart := store.carts[cart.ID]
	assert.Empty(t, clearedCart.Items)
	assert.Equal(t, "0.00", clearedCart.Totals.TotalPrice.StringFixed(2))
	assert.Equal(t, 2, clearedCart.Version)

	require.Len(t, dispatcher.events, 1)
	_, ok = dispatcher.events[0].(model.OrderCreated)
	require.True(t, ok)
}

func TestCreateOrderPreconditions(t *testing.T) {
	orderService, store, _ := setupOrder(t)
	product := seedProduct(store, "30.00", 5)

	t.Run("Fail for anonymous identity", func(t *testing.T) {
		_, err := orderService.CreateOrder(model.Identity{SessionCartID: "session-1"})
		assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	})

	t.Run("Fail without a cart", func(t *testing.T) {
		user := seedUser(store, true, "Paypal")
		_, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
		assert.ErrorIs(t, err, service.ErrEmptyCart)
	})

	t.Run("Fail on empty cart", func(t *testing.T) {
		user := seedUser(store, true, "Paypal")
		seedCartFor(store, user.ID, nil)
		_, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
		assert.ErrorIs(t, err, service.ErrEmptyCart)
	})

	t.Run("Empty cart trumps missing address", func(t *testing.T) {
		user := seedUser(store, false, "")
		seedCartFor(store, user.ID, nil)
		_, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
		assert.ErrorIs(t, err, service.ErrEmptyCart)
	})

	t.Run("Fail without shipping address", func(t *testing.T) {
		user := seedUser(store, false, "Paypal")
		seedCartFor(store, user.ID, []model.CartItem{{ProductID: product.ID, Price: product.Price, Qty: 1}})
		_, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
		assert.ErrorIs(t, err, service.ErrMissingShippingAddress)
	})

	t.Run("Fail without payment method", func(t *testing.T) {
		user := seedUser(store, true, "")
		seedCartFor(store, user.ID, []model.CartItem{{ProductID: product.ID, Price: product.Price, Qty: 1}})
		_, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
		assert.ErrorIs(t, err, service.ErrMissingPaymentMethod)
	})
}

func TestCreateOrderRollsBackOnFailure(t *testing.T) {
	orderService, store, dispatcher := setupOrder(t)
	product := seedProduct(store, "30.00", 5)
	user := seedUser(store, true, "Paypal")
	cart := seedCartFor(store, user.ID, []model.CartItem{
		{ProductID: product.ID, Price: product.Price, Qty: 2},
	})

	injected := errors.New("connection reset")
	store.failCartUpdate = injected

	_, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
	require.ErrorIs(t, err, injected)

	// Nothing from the failed transaction may stick.
	assert.Empty(t, store.orders)
	assert.Len(t, store.carts[cart.ID].Items, 1)
	assert.Equal(t, 1, store.carts[cart.ID].Version)
	assert.Empty(t, dispatcher.events)
}

func paidResult(order *model.Order) model.PaymentResult {
	return model.PaymentResult{
		TransactionID: "5TX123456789",
		Status:        service.PaymentStatusCompleted,
		PayerEmail:    "jane@example.com",
		AmountPaid:    order.Totals.TotalPrice,
	}
}

func TestMarkOrderPaid(t *testing.T) {
	orderService, store, dispatcher := setupOrder(t)
	product := seedProduct(store, "30.00", 5)
	user := seedUser(store, true, "Paypal")
	seedCartFor(store, user.ID, []model.CartItem{
		{ProductID: product.ID, Price: product.Price, Qty: 2},
	})
	order, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
	require.NoError(t, err)
	dispatcher.Reset()

	t.Run("Success decrements stock and records the result", func(t *testing.T) {
		paid, err := orderService.MarkOrderPaid(order.ID, paidResult(order))

		require.NoError(t, err)
		assert.True(t, paid.IsPaid)
		require.NotNil(t, paid.PaidAt)
		require.NotNil(t, paid.PaymentResult)
		assert.Equal(t, "5TX123456789", paid.PaymentResult.TransactionID)
		assert.Equal(t, 2, paid.Version)

		assert.Equal(t, 3, store.products[product.ID].Stock)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.OrderPaid)
		assert.True(t, ok)
	})

	t.Run("Second payment fails and decrements nothing", func(t *testing.T) {
		_, err := orderService.MarkOrderPaid(order.ID, paidResult(order))

		assert.ErrorIs(t, err, model.ErrOrderAlreadyPaid)
		assert.Equal(t, 3, store.products[product.ID].Stock)
	})

	t.Run("Fail on unknown order", func(t *testing.T) {
		_, err := orderService.MarkOrderPaid(uuid.New(), paidResult(order))
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestMarkOrderDelivered(t *testing.T) {
	orderService, store, dispatcher := setupOrder(t)
	product := seedProduct(store, "30.00", 5)
	user := seedUser(store, true, "Paypal")
	seedCartFor(store, user.ID, []model.CartItem{
		{ProductID: product.ID, Price: product.Price, Qty: 1},
	})
	order, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
	require.NoError(t, err)

	t.Run("Fail before payment", func(t *testing.T) {
		err := orderService.MarkOrderDelivered(order.ID)
		assert.ErrorIs(t, err, model.ErrOrderNotPaid)
	})

	t.Run("Success after payment", func(t *testing.T) {
		_, err := orderService.MarkOrderPaid(order.ID, paidResult(order))
		require.NoError(t, err)
		dispatcher.Reset()

		require.NoError(t, orderService.MarkOrderDelivered(order.ID))

		delivered := store.orders[order.ID]
		assert.True(t, delivered.IsDelivered)
		require.NotNil(t, delivered.DeliveredAt)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.OrderDelivered)
		assert.True(t, ok)
	})
}

func TestAttachPaymentIntent(t *testing.T) {
	orderService, store, _ := setupOrder(t)
	product := seedProduct(store, "30.00", 5)
	user := seedUser(store, true, "Paypal")
	seedCartFor(store, user.ID, []model.CartItem{
		{ProductID: product.ID, Price: product.Price, Qty: 1},
	})
	order, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
	require.NoError(t, err)

	require.NoError(t, orderService.AttachPaymentIntent(order.ID, "5TX123456789"))
	assert.Equal(t, "5TX123456789", store.orders[order.ID].PaymentIntentID)

	_, err = orderService.MarkOrderPaid(order.ID, paidResult(order))
	require.NoError(t, err)

	err = orderService.AttachPaymentIntent(order.ID, "5TX000000000")
	assert.ErrorIs(t, err, model.ErrOrderAlreadyPaid)
}

func TestListUserOrders(t *testing.T) {
	orderService, store, _ := setupOrder(t)
	product := seedProduct(store, "30.00", 5)
	user := seedUser(store, true, "Paypal")
	other := seedUser(store, true, "Paypal")
	seedCartFor(store, user.ID, []model.CartItem{
		{ProductID: product.ID, Price: product.Price, Qty: 1},
	})
	seedCartFor(store, other.ID, []model.CartItem{
		{ProductID: product.ID, Price: product.Price, Qty: 1},
	})

	mine, err := orderService.CreateOrder(model.Identity{UserID: user.ID})
	require.NoError(t, err)
	_, err = orderService.CreateOrder(model.Identity{UserID: other.ID})
	require.NoError(t, err)

	orders, err := orderService.ListUserOrders(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)
}
