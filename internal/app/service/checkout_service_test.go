package service

import (
	"context"
	"errors"
	"testing"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/auth"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	db       *gorm.DB
	cart     CartService
	checkout CheckoutService
	registry *prometheus.Registry
}

func setupCheckoutTest(t *testing.T) *checkoutFixture {
	testDB := setupTestDB(t)
	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)

	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	return &checkoutFixture{
		db:       testDB,
		cart:     NewCartService(cartRepo, repository.NewProductRepository(testDB), storeMetrics),
		checkout: NewCheckoutService(testDB, cartRepo, orderRepo, storeMetrics),
		registry: registry,
	}
}

func shippingDetails(cost string) ShippingDetails {
	return ShippingDetails{
		FullName:       "Alice Example",
		Phone:          "+1 555 0100",
		Address:        "1 Main St",
		City:           "Springfield",
		PostalCode:     "12345",
		PaymentMethod:  "cod",
		ShippingOption: "standard",
		ShippingCost:   cost,
	}
}

func TestCheckout_PricesOrderAndEmptiesCart(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	a := createProduct(t, f.db, "A", "10.00")
	b := createProduct(t, f.db, "B", "5.00")

	_, err := f.cart.AddItem(ctx, alice, a.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, alice, b.ID, 1)
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, alice, shippingDetails("3.00"))
	require.NoError(t, err)

	assert.Equal(t, "28.00", order.TotalPrice.StringFixed(2))
	assert.Equal(t, "3.00", order.ShippingCost.StringFixed(2))
	assert.Equal(t, alice.UserID, order.UserID)
	assert.Equal(t, "Springfield", order.City)
	require.Len(t, order.Items, 2)
	assert.Equal(t, a.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "10.00", order.Items[0].Price.StringFixed(2))
	assert.Equal(t, b.ID, order.Items[1].ProductID)
	assert.Equal(t, "5.00", order.Items[1].Price.StringFixed(2))
	assert.Equal(t, "A", order.Items[0].Product.Name)

	lines := order.ShippingCost
	for _, item := range order.Items {
		lines = lines.Add(item.LineTotal())
	}
	assert.True(t, lines.Equal(order.TotalPrice))

	items, err := f.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Cart{}))

	assert.Equal(t, 1.0, checkoutCount(t, f.registry, metrics.CheckoutSuccess))
}

func TestCheckout_EmptyShippingCostIsZero(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	a := createProduct(t, f.db, "A", "19.99")

	_, err := f.cart.AddItem(ctx, alice, a.ID, 3)
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, alice, shippingDetails(""))
	require.NoError(t, err)
	assert.Equal(t, "59.97", order.TotalPrice.StringFixed(2))
	assert.True(t, order.ShippingCost.IsZero())
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	a := createProduct(t, f.db, "A", "10.00")

	item, err := f.cart.AddItem(ctx, alice, a.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.cart.RemoveItem(ctx, alice, item.ID))

	order, err := f.checkout.Checkout(ctx, alice, shippingDetails("3.00"))
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, apperrors.KindEmptyCart, apperrors.KindOf(err))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, 1.0, checkoutCount(t, f.registry, metrics.CheckoutEmptyCart))
}

func TestCheckout_NoCart(t *testing.T) {
	f := setupCheckoutTest(t)
	_, alice := createUser(t, f.db, "alice", "alice@example.com")

	_, err := f.checkout.Checkout(context.Background(), alice, shippingDetails(""))
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCheckout_Anonymous(t *testing.T) {
	f := setupCheckoutTest(t)

	_, err := f.checkout.Checkout(context.Background(), auth.Identity{}, shippingDetails(""))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCheckout_InvalidShippingCostKeepsCart(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	a := createProduct(t, f.db, "A", "10.00")

	_, err := f.cart.AddItem(ctx, alice, a.ID, 1)
	require.NoError(t, err)

	for _, cost := range []string{"abc", "-1.00", "1.005"} {
		_, err := f.checkout.Checkout(ctx, alice, shippingDetails(cost))
		assert.ErrorIs(t, err, ErrInvalidShippingCost, cost)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}

	items, err := f.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(0), countRows(t, f.db, &model.Order{}))
}

func TestCheckout_FailureRollsBackEverything(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	a := createProduct(t, f.db, "A", "10.00")
	b := createProduct(t, f.db, "B", "5.00")

	_, err := f.cart.AddItem(ctx, alice, a.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, alice, b.ID, 1)
	require.NoError(t, err)

	injected := errors.New("injected order item failure")
	err = f.db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			tx.AddError(injected)
		}
	})
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, alice, shippingDetails("3.00"))
	assert.Nil(t, order)
	assert.ErrorIs(t, err, injected)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	assert.Equal(t, int64(0), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.OrderItem{}))

	items, err := f.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestCheckout_SnapshotsPrice(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	a := createProduct(t, f.db, "A", "10.00")

	_, err := f.cart.AddItem(ctx, alice, a.ID, 1)
	require.NoError(t, err)
	order, err := f.checkout.Checkout(ctx, alice, shippingDetails("0"))
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", a.ID).Update("price", money("99.00")).Error)

	var stored model.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&stored).Error)
	assert.Equal(t, "10.00", stored.Price.StringFixed(2))
}

func TestCheckout_OnlyTouchesOwnCart(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	_, alice := createUser(t, f.db, "alice", "alice@example.com")
	_, bob := createUser(t, f.db, "bob", "bob@example.com")
	a := createProduct(t, f.db, "A", "10.00")

	_, err := f.cart.AddItem(ctx, alice, a.ID, 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, bob, a.ID, 2)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, alice, shippingDetails(""))
	require.NoError(t, err)

	bobItems, err := f.cart.ListItems(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobItems, 1)
	assert.Equal(t, 2, bobItems[0].Quantity)
}

func TestParseShippingCost(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: "0.00"},
		{raw: "  ", want: "0.00"},
		{raw: "0", want: "0.00"},
		{raw: "3", want: "3.00"},
		{raw: "3.5", want: "3.50"},
		{raw: " 12.34 ", want: "12.34"},
		{raw: "1.005", wantErr: true},
		{raw: "-0.01", wantErr: true},
		{raw: "free", wantErr: true},
		{raw: "100000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseShippingCost(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidShippingCost)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func checkoutCount(t *testing.T, registry *prometheus.Registry, result string) float64 {
	t.Helper()
	mfs, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "storefront_checkouts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
