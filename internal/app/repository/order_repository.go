package repository

import (
	"context"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.Order) error
	CreateItems(ctx context.Context, items []model.OrderItem) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDForUser(ctx context.Context, userID, id uint) (*model.Order, error)
	FindByUserID(ctx context.Context, userID uint) ([]model.Order, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("Items.Product")
}

// Create inserts the order row only; items are inserted with CreateItems.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":     order.UserID,
		"total_price": order.TotalPrice.StringFixed(2),
	})

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
			"count":    len(items),
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUser returns gorm.ErrRecordNotFound for orders of other users.
func (r *orderRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder(ctx).Where("user_id = ?", userID).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.preloadOrder(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// FindCreatedBetween returns orders with from <= created_at < to, oldest first.
func (r *orderRepository) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
