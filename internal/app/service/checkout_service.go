package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/auth"
	"github.com/e4rthen/storefront-backend/internal/db"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/e4rthen/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxShippingCost keeps the value inside numeric(10,2).
var maxShippingCost = decimal.New(1, 8)

// ShippingDetails is copied onto the order. ShippingCost is the raw decimal
// text sent by the client; empty means zero.
type ShippingDetails struct {
	FullName       string
	Phone          string
	Address        string
	City           string
	PostalCode     string
	PaymentMethod  string
	ShippingOption string
	ShippingCost   string
}

type CheckoutService interface {
	Checkout(ctx context.Context, identity auth.Identity, details ShippingDetails) (*model.Order, error)
}

type checkoutService struct {
	db        *gorm.DB
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
	metrics   *metrics.StoreMetrics
}

func NewCheckoutService(
	database *gorm.DB,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	storeMetrics *metrics.StoreMetrics,
) CheckoutService {
	return &checkoutService{
		db:        database,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		metrics:   storeMetrics,
	}
}

// ParseShippingCost parses a non-negative amount with at most two decimal
// places. Empty input is zero.
func ParseShippingCost(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	cost, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidShippingCost.Wrap(err)
	}
	if cost.IsNegative() || !cost.Equal(cost.Round(2)) || cost.GreaterThanOrEqual(maxShippingCost) {
		return decimal.Zero, ErrInvalidShippingCost
	}
	return cost, nil
}

// Checkout turns the caller's cart into an order. The order, its items and
// the emptying of the cart commit together or not at all.
func (s *checkoutService) Checkout(ctx context.Context, identity auth.Identity, details ShippingDetails) (*model.Order, error) {
	started := time.Now()
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	logger.Info("Checkout started", map[string]interface{}{
		"user_id": identity.UserID,
	})

	var (
		orderID   uint
		total     decimal.Decimal
		lineCount int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)

		cart, err := carts.LockByUserID(ctx, identity.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		if err != nil {
			return apperrors.Internal("lock cart", err)
		}

		lines, err := carts.CheckoutLines(ctx, cart.ID)
		if err != nil {
			return apperrors.Internal("read cart lines", err)
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		shipping, err := ParseShippingCost(details.ShippingCost)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, line := range lines {
			subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		total = subtotal.Add(shipping)

		order := &model.Order{
			UserID:         identity.UserID,
			TotalPrice:     total,
			FullName:       details.FullName,
			Phone:          details.Phone,
			Address:        details.Address,
			City:           details.City,
			PostalCode:     details.PostalCode,
			PaymentMethod:  details.PaymentMethod,
			ShippingOption: details.ShippingOption,
			ShippingCost:   shipping,
		}
		if err := orders.Create(ctx, order); err != nil {
			return apperrors.Internal("create order", err)
		}

		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, model.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
		}
		if err := orders.CreateItems(ctx, items); err != nil {
			return apperrors.Internal("create order items", err)
		}

		if _, err := carts.ClearItems(ctx, cart.ID); err != nil {
			return apperrors.Internal("clear cart", err)
		}

		orderID = order.ID
		lineCount = len(lines)
		return nil
	}, db.SerializableTx(s.db))
	if err != nil {
		s.metrics.ObserveCheckout(checkoutResult(err), started, decimal.Zero)
		if apperrors.KindOf(err) == apperrors.KindInternal {
			logger.Error("Checkout failed", err, map[string]interface{}{
				"user_id": identity.UserID,
			})
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				err = apperrors.Internal("checkout", err)
			}
		} else {
			logger.Warn("Checkout rejected", map[string]interface{}{
				"user_id": identity.UserID,
				"reason":  err.Error(),
			})
		}
		return nil, err
	}
	s.metrics.ObserveCheckout(metrics.CheckoutSuccess, started, total)

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":     identity.UserID,
		"order_id":    orderID,
		"items":       lineCount,
		"total_price": total.StringFixed(2),
	})

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal("reload order", err)
	}
	return order, nil
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, ErrCartEmpty):
		return metrics.CheckoutEmptyCart
	case errors.Is(err, ErrCartNotFound):
		return metrics.CheckoutNoCart
	case apperrors.KindOf(err) == apperrors.KindValidation:
		return metrics.CheckoutInvalid
	default:
		return metrics.CheckoutError
	}
}
