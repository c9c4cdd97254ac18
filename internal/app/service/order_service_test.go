package service

import (
	"context"
	"testing"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertOrder(t *testing.T, testDB *gorm.DB, userID, productID uint, createdAt time.Time) *model.Order {
	t.Helper()
	order := &model.Order{
		UserID:     userID,
		TotalPrice: money("10.00"),
		CreatedAt:  createdAt,
		Items: []model.OrderItem{
			{ProductID: productID, Quantity: 1, Price: money("10.00")},
		},
	}
	require.NoError(t, testDB.Create(order).Error)
	return order
}

func TestOrderService_ListOrders_OwnNewestFirst(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewOrderService(repository.NewOrderRepository(testDB))
	alice, aliceID := createUser(t, testDB, "alice", "alice@example.com")
	bob, bobID := createUser(t, testDB, "bob", "bob@example.com")
	product := createProduct(t, testDB, "A", "10.00")

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	first := insertOrder(t, testDB, alice.ID, product.ID, base)
	second := insertOrder(t, testDB, alice.ID, product.ID, base.Add(time.Minute))
	insertOrder(t, testDB, bob.ID, product.ID, base.Add(2*time.Minute))

	orders, err := svc.ListOrders(context.Background(), aliceID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 1)

	bobOrders, err := svc.ListOrders(context.Background(), bobID)
	require.NoError(t, err)
	assert.Len(t, bobOrders, 1)

	_, err = svc.ListOrders(context.Background(), auth.Identity{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestOrderService_GetOrder(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewOrderService(repository.NewOrderRepository(testDB))
	alice, aliceID := createUser(t, testDB, "alice", "alice@example.com")
	_, bobID := createUser(t, testDB, "bob", "bob@example.com")
	product := createProduct(t, testDB, "A", "10.00")

	order := insertOrder(t, testDB, alice.ID, product.ID, time.Now().UTC())

	found, err := svc.GetOrder(context.Background(), aliceID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.GetOrder(context.Background(), bobID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), aliceID, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
