package service

import (
	"context"
	"errors"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/auth"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderService interface {
	ListOrders(ctx context.Context, identity auth.Identity) ([]model.Order, error)
	GetOrder(ctx context.Context, identity auth.Identity, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// ListOrders returns the caller's orders, newest first.
func (s *orderService) ListOrders(ctx context.Context, identity auth.Identity) ([]model.Order, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	orders, err := s.orderRepo.FindByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.Internal("list orders", err)
	}

	logger.Debug("Orders listed", map[string]interface{}{
		"user_id": identity.UserID,
		"count":   len(orders),
	})
	return orders, nil
}

// GetOrder returns one of the caller's orders. Orders of other users are
// reported as missing.
func (s *orderService) GetOrder(ctx context.Context, identity auth.Identity, orderID uint) (*model.Order, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	order, err := s.orderRepo.FindByIDForUser(ctx, identity.UserID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("get order", err)
	}
	return order, nil
}
