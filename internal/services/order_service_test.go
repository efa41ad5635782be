package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
)

func newTestProduct(name, price string, stock int) models.Product {
	return models.Product{
		BaseModel:     models.BaseModel{ID: uuid.New()},
		Name:          name,
		Slug:          name,
		SKU:           "SKU-" + name,
		Price:         dec(price),
		StockQuantity: stock,
		IsActive:      true,
		Images: []models.ProductImage{
			{ImageURL: "https://cdn.example.com/" + name + "-2.jpg"},
			{ImageURL: "https://cdn.example.com/" + name + ".jpg", IsPrimary: true},
		},
	}
}

func newOrderServiceForTest(store *memStore, notifier OrderNotifier) *OrderService {
	return NewOrderService(
		&fakeOrderRepo{store: store},
		&fakeProductRepo{store: store},
		fakePricing{settings: DefaultPricingSettings()},
		notifier,
		zap.NewNop(),
	)
}

func TestPlaceOrderUsesCatalogPrices(t *testing.T) {
	product := newTestProduct("candle", "12.50", 10)
	store := newMemStore(product)
	notifier := &recordingNotifier{}
	svc := newOrderServiceForTest(store, notifier)

	lie := dec("0.01")
	order, created, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []OrderItemInput{
			{ProductID: product.ID.String(), ProductName: "free stuff", Quantity: 2, UnitPrice: &lie},
		},
		Tax:          &lie,
		ShippingCost: &lie,
	})
	require.NoError(t, err)
	assert.True(t, created)

	assert.True(t, order.Subtotal.Equal(dec("25")), "subtotal %s", order.Subtotal)
	assert.True(t, order.Tax.Equal(dec("4.5")), "tax %s", order.Tax)
	assert.True(t, order.ShippingCost.IsZero())
	assert.True(t, order.Total.Equal(dec("29.5")), "total %s", order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, defaultPaymentMethod, order.PaymentMethod)
	assert.Regexp(t, `^ORD-\d{14}-[A-Z0-9]{6}$`, order.OrderNumber)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "candle", item.ProductName)
	assert.Equal(t, "SKU-candle", item.ProductSKU)
	assert.Equal(t, "https://cdn.example.com/candle.jpg", item.ProductImage)
	assert.True(t, item.UnitPrice.Equal(dec("12.50")))
	assert.True(t, item.Subtotal.Equal(dec("25")))

	assert.Equal(t, 8, store.stock(product.ID))
	assert.Len(t, notifier.placed, 1)
}

func TestPlaceOrderMergesRepeatedLines(t *testing.T) {
	product := newTestProduct("mug", "5", 10)
	store := newMemStore(product)
	svc := newOrderServiceForTest(store, nil)

	order, _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: product.ID.String(), Quantity: 1},
			{ProductID: product.ID.String(), Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 4, order.Items[0].Quantity)
	assert.Equal(t, 6, store.stock(product.ID))
}

func TestPlaceOrderRejectsOverflowingMergedQuantity(t *testing.T) {
	product := newTestProduct("mug", "10", 5)
	store := newMemStore(product)
	svc := newOrderServiceForTest(store, nil)

	carts := [][]OrderItemInput{
		{
			{ProductID: product.ID.String(), Quantity: math.MaxInt},
			{ProductID: product.ID.String(), Quantity: math.MaxInt},
		},
		{
			{ProductID: product.ID.String(), Quantity: math.MaxInt32},
			{ProductID: product.ID.String(), Quantity: 1},
		},
		{
			{ProductID: product.ID.String(), Quantity: math.MaxInt32 + 1},
		},
	}
	for _, items := range carts {
		_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{Items: items})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation), err.Error())
	}
	assert.Equal(t, 5, store.stock(product.ID))
	assert.Equal(t, 0, store.orderCount())
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc := newOrderServiceForTest(newMemStore(), nil)

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "Order must have at least one item", err.Error())
}

func TestPlaceOrderRejectsBadLines(t *testing.T) {
	product := newTestProduct("lamp", "40", 3)
	inactive := newTestProduct("old", "40", 3)
	inactive.IsActive = false
	svc := newOrderServiceForTest(newMemStore(product, inactive), nil)

	cases := map[string]OrderItemInput{
		"zero quantity":    {ProductID: product.ID.String(), Quantity: 0},
		"invalid id":       {ProductID: "not-a-uuid", Quantity: 1},
		"unknown product":  {ProductID: uuid.NewString(), Quantity: 1},
		"inactive product": {ProductID: inactive.ID.String(), Quantity: 1},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{Items: []OrderItemInput{item}})
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
		})
	}
}

func TestPlaceOrderInsufficientStockChangesNothing(t *testing.T) {
	plenty := newTestProduct("plenty", "10", 50)
	scarce := newTestProduct("scarce", "10", 1)
	store := newMemStore(plenty, scarce)
	svc := newOrderServiceForTest(store, nil)

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: plenty.ID.String(), Quantity: 5},
			{ProductID: scarce.ID.String(), Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInsufficientStock))
	assert.Contains(t, err.Error(), "Insufficient stock for product scarce")

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 409, svcErr.StatusCode())

	assert.Equal(t, 50, store.stock(plenty.ID))
	assert.Equal(t, 1, store.stock(scarce.ID))
	assert.Zero(t, store.orderCount())
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	product := newTestProduct("last", "99", 1)
	store := newMemStore(product)
	svc := newOrderServiceForTest(store, nil)

	const buyers = 8
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.PlaceOrder(context.Background(), PlaceOrderInput{
				Items: []OrderItemInput{{ProductID: product.ID.String(), Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsKind(err, KindInsufficientStock), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, store.stock(product.ID))
	assert.Equal(t, 1, store.orderCount())
}

func TestPlaceOrderIdempotencyKey(t *testing.T) {
	product := newTestProduct("book", "20", 5)
	store := newMemStore(product)
	svc := newOrderServiceForTest(store, nil)

	input := PlaceOrderInput{
		Items:          []OrderItemInput{{ProductID: product.ID.String(), Quantity: 1}},
		IdempotencyKey: "checkout-123",
	}
	first, created, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 4, store.stock(product.ID))
	assert.Equal(t, 1, store.orderCount())
}

func TestPlaceOrderPricingFailure(t *testing.T) {
	product := newTestProduct("pen", "2", 5)
	store := newMemStore(product)
	svc := NewOrderService(&fakeOrderRepo{store: store}, &fakeProductRepo{store: store},
		fakePricing{err: storageError("failed to load pricing settings", assert.AnError)}, nil, zap.NewNop())

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))
	assert.Equal(t, 5, store.stock(product.ID))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	product := newTestProduct("chair", "100", 4)
	store := newMemStore(product)
	svc := newOrderServiceForTest(store, nil)
	ctx := context.Background()

	order, _, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.stock(product.ID))

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.UpdateStatus(ctx, order.ID, "shipped")
	assert.True(t, IsKind(err, KindValidation))

	updated, err := svc.UpdateStatus(ctx, order.ID, "Processing")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	updated, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	updated, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 4, store.stock(product.ID))

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, 4, store.stock(product.ID))
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := newOrderServiceForTest(newMemStore(), nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), models.OrderStatusProcessing)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.OrderStatusPending, models.OrderStatusProcessing))
	assert.True(t, CanTransition(models.OrderStatusPending, models.OrderStatusCancelled))
	assert.True(t, CanTransition(models.OrderStatusProcessing, models.OrderStatusCompleted))
	assert.False(t, CanTransition(models.OrderStatusPending, models.OrderStatusCompleted))
	assert.False(t, CanTransition(models.OrderStatusCompleted, models.OrderStatusCancelled))
	assert.False(t, CanTransition(models.OrderStatusCancelled, models.OrderStatusPending))
}

func TestListOrdersFilters(t *testing.T) {
	product := newTestProduct("cup", "3", 10)
	store := newMemStore(product)
	svc := newOrderServiceForTest(store, nil)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, _, err := svc.PlaceOrder(ctx, PlaceOrderInput{
			CustomerEmail: email,
			Items:         []OrderItemInput{{ProductID: product.ID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
	}

	orders, err := svc.ListOrders(ctx, OrderFilter{CustomerEmail: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "a@example.com", orders[0].CustomerEmail)
}
