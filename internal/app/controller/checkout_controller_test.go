package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/app/service"
	"github.com/e4rthen/storefront-backend/internal/auth"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type storeControllers struct {
	cart     *CartController
	checkout *CheckoutController
	orders   *OrderController
}

func setupStoreControllers(t *testing.T) (storeControllers, *gorm.DB) {
	testDB := setupTestDB(t)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	return storeControllers{
		cart:     NewCartController(service.NewCartService(cartRepo, productRepo, nil)),
		checkout: NewCheckoutController(service.NewCheckoutService(testDB, cartRepo, orderRepo, nil)),
		orders:   NewOrderController(service.NewOrderService(orderRepo)),
	}, testDB
}

func storeRouter(ctrls storeControllers, identity auth.Identity) *gin.Engine {
	router := newTestRouter()
	group := router.Group("", as(identity))
	group.POST("/cart/items", ctrls.cart.AddItem)
	group.GET("/cart/items", ctrls.cart.ListItems)
	group.POST("/checkout", ctrls.checkout.Checkout)
	group.GET("/orders", ctrls.orders.ListOrders)
	group.GET("/orders/:id", ctrls.orders.GetOrder)
	return router
}

func addToCart(t *testing.T, router *gin.Engine, productID uint, quantity int) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": productID, "quantity": quantity})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCheckoutController_Checkout_PricesOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string shipping cost", `{"full_name":"Ann Lee","city":"Lyon","shipping_cost":"3.00"}`},
		{"numeric shipping cost", `{"full_name":"Ann Lee","city":"Lyon","shipping_cost":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrls, testDB := setupStoreControllers(t)
			identity := createUser(t, testDB, "alice")
			a := createProduct(t, testDB, "A", "10.00")
			b := createProduct(t, testDB, "B", "5.00")
			router := storeRouter(ctrls, identity)
			addToCart(t, router, a.ID, 2)
			addToCart(t, router, b.ID, 1)

			w := doJSON(router, http.MethodPost, "/checkout", tt.body)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var order model.Order
			decode(t, w, &order)
			assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("28.00")), order.TotalPrice.String())
			assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("3.00")))
			assert.Equal(t, "Ann Lee", order.FullName)
			assert.Equal(t, "Lyon", order.City)
			require.Len(t, order.Items, 2)
			assert.Equal(t, "10.00", order.Items[0].Price.StringFixed(2))
			assert.Equal(t, "5.00", order.Items[1].Price.StringFixed(2))

			w = doJSON(router, http.MethodGet, "/cart/items", nil)
			assert.JSONEq(t, `[]`, w.Body.String())
		})
	}
}

func TestCheckoutController_Checkout_WithoutBody(t *testing.T) {
	ctrls, testDB := setupStoreControllers(t)
	identity := createUser(t, testDB, "alice")
	product := createProduct(t, testDB, "A", "10.00")
	router := storeRouter(ctrls, identity)
	addToCart(t, router, product.ID, 1)

	w := doJSON(router, http.MethodPost, "/checkout", nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order model.Order
	decode(t, w, &order)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("10")))
	assert.True(t, order.ShippingCost.IsZero())
}

func TestCheckoutController_Checkout_Rejects(t *testing.T) {
	ctrls, testDB := setupStoreControllers(t)
	product := createProduct(t, testDB, "A", "10.00")

	withoutCart := createUser(t, testDB, "nocart")

	emptyCart := createUser(t, testDB, "empty")
	require.NoError(t, testDB.Create(&model.Cart{UserID: emptyCart.UserID}).Error)

	filled := createUser(t, testDB, "filled")
	addToCart(t, storeRouter(ctrls, filled), product.ID, 1)

	tests := []struct {
		name     string
		identity auth.Identity
		body     string
		status   int
		code     string
	}{
		{"no cart", withoutCart, `{}`, http.StatusNotFound, apperrors.CartNotFound},
		{"empty cart", emptyCart, `{}`, http.StatusBadRequest, apperrors.CartEmpty},
		{"negative shipping", filled, `{"shipping_cost":"-1"}`, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"malformed shipping", filled, `{"shipping_cost":"abc"}`, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"malformed body", filled, `{"shipping_cost":`, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"anonymous", auth.Identity{}, `{}`, http.StatusUnauthorized, apperrors.AuthUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(storeRouter(ctrls, tt.identity), http.MethodPost, "/checkout", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}

	var orders int64
	require.NoError(t, testDB.Model(&model.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	w := doJSON(storeRouter(ctrls, filled), http.MethodGet, "/cart/items", nil)
	var items []model.CartItem
	decode(t, w, &items)
	assert.Len(t, items, 1)
}

func TestCheckoutRequest_ShippingCost(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{``, ""},
		{`null`, ""},
		{`"4.50"`, "4.50"},
		{`4.5`, "4.5"},
	}
	for _, tt := range tests {
		req := CheckoutRequest{ShippingCost: []byte(tt.raw)}
		assert.Equal(t, tt.want, req.shippingCost(), tt.raw)
	}
}

func TestOrderController_OwnOrdersOnly(t *testing.T) {
	ctrls, testDB := setupStoreControllers(t)
	alice := createUser(t, testDB, "alice")
	bob := createUser(t, testDB, "bob")
	product := createProduct(t, testDB, "A", "10.00")

	aliceRouter := storeRouter(ctrls, alice)
	var placed []model.Order
	for i := 0; i < 2; i++ {
		addToCart(t, aliceRouter, product.ID, i+1)
		w := doJSON(aliceRouter, http.MethodPost, "/checkout", `{}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var order model.Order
		decode(t, w, &order)
		placed = append(placed, order)
	}

	w := doJSON(aliceRouter, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []model.Order
	decode(t, w, &orders)
	require.Len(t, orders, 2)
	assert.Equal(t, placed[1].ID, orders[0].ID)
	assert.Equal(t, placed[0].ID, orders[1].ID)

	w = doJSON(aliceRouter, http.MethodGet, fmt.Sprintf("/orders/%d", placed[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	bobRouter := storeRouter(ctrls, bob)
	w = doJSON(bobRouter, http.MethodGet, "/orders", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(bobRouter, http.MethodGet, fmt.Sprintf("/orders/%d", placed[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.OrderNotFound, errorCode(t, w))
}
