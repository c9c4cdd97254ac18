package service

import (
	"context"
	"errors"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/auth"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/e4rthen/storefront-backend/pkg/metrics"
	"gorm.io/gorm"
)

type CartService interface {
	GetCart(ctx context.Context, identity auth.Identity) (*model.Cart, error)
	ListItems(ctx context.Context, identity auth.Identity) ([]model.CartItem, error)
	AddItem(ctx context.Context, identity auth.Identity, productID uint, quantity int) (*model.CartItem, error)
	GetItem(ctx context.Context, identity auth.Identity, itemID uint) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, identity auth.Identity, itemID uint, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, identity auth.Identity, itemID uint) error
	ClearCart(ctx context.Context, identity auth.Identity) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	metrics     *metrics.StoreMetrics
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	storeMetrics *metrics.StoreMetrics,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		metrics:     storeMetrics,
	}
}

// GetCart returns the caller's cart with items, creating an empty one if
// needed.
func (s *cartService) GetCart(ctx context.Context, identity auth.Identity) (*model.Cart, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.Internal("get cart", err)
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, apperrors.Internal("list cart items", err)
	}
	cart.Items = items
	return cart, nil
}

// ListItems returns every item of the caller's cart, or an empty list when
// there is no cart yet.
func (s *cartService) ListItems(ctx context.Context, identity auth.Identity) ([]model.CartItem, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	cart, err := s.cartRepo.FindByUserID(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, apperrors.Internal("find cart", err)
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, apperrors.Internal("list cart items", err)
	}
	return items, nil
}

// AddItem adds quantity of the product to the caller's cart. A product that
// is already in the cart has its quantity increased instead of getting a
// second line.
func (s *cartService) AddItem(ctx context.Context, identity auth.Identity, productID uint, quantity int) (*model.CartItem, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	logger.Debug("Adding product to cart", map[string]interface{}{
		"user_id":    identity.UserID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Add to cart failed: product not found", map[string]interface{}{
				"user_id":    identity.UserID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Internal("find product", err)
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.Internal("get cart", err)
	}

	item, err := s.cartRepo.AddOrIncrementItem(ctx, cart.ID, productID, quantity)
	if err != nil {
		logger.Error("Failed to add product to cart", err, map[string]interface{}{
			"user_id":    identity.UserID,
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return nil, apperrors.Internal("add cart item", err)
	}
	s.metrics.IncCartAdd()

	logger.Info("Product added to cart", map[string]interface{}{
		"user_id":      identity.UserID,
		"cart_item_id": item.ID,
		"product_id":   productID,
		"quantity":     item.Quantity,
	})
	return item, nil
}

func (s *cartService) GetItem(ctx context.Context, identity auth.Identity, itemID uint) (*model.CartItem, error) {
	cart, err := s.ownCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindItem(ctx, cart.ID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("find cart item", err)
	}
	return item, nil
}

// UpdateItemQuantity sets the absolute quantity of one of the caller's items.
func (s *cartService) UpdateItemQuantity(ctx context.Context, identity auth.Identity, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.ownCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, apperrors.Internal("update cart item", err)
	}

	logger.Info("Cart item quantity updated", map[string]interface{}{
		"user_id":      identity.UserID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})
	return s.GetItem(ctx, identity, itemID)
}

func (s *cartService) RemoveItem(ctx context.Context, identity auth.Identity, itemID uint) error {
	cart, err := s.ownCart(ctx, identity)
	if err != nil {
		return err
	}

	if err := s.cartRepo.DeleteItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return apperrors.Internal("delete cart item", err)
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id":      identity.UserID,
		"cart_item_id": itemID,
	})
	return nil
}

// ClearCart removes every item; the cart itself stays.
func (s *cartService) ClearCart(ctx context.Context, identity auth.Identity) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}

	cart, err := s.cartRepo.FindByUserID(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal("find cart", err)
	}

	deleted, err := s.cartRepo.ClearItems(ctx, cart.ID)
	if err != nil {
		return apperrors.Internal("clear cart", err)
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": identity.UserID,
		"deleted": deleted,
	})
	return nil
}

// ownCart resolves the caller's cart for item operations. Without a cart no
// item can belong to the caller.
func (s *cartService) ownCart(ctx context.Context, identity auth.Identity) (*model.Cart, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}
	cart, err := s.cartRepo.FindByUserID(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("find cart", err)
	}
	return cart, nil
}
