package repository

import (
	"context"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckoutLine is one cart item joined with its product's current price.
type CheckoutLine struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cart *model.Cart) error
	GetOrCreateByUserID(ctx context.Context, userID uint) (*model.Cart, error)
	FindByUserID(ctx context.Context, userID uint) (*model.Cart, error)
	LockByUserID(ctx context.Context, userID uint) (*model.Cart, error)
	AddOrIncrementItem(ctx context.Context, cartID, productID uint, quantity int) (*model.CartItem, error)
	ListItems(ctx context.Context, cartID uint) ([]model.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID uint) error
	ClearItems(ctx context.Context, cartID uint) (int64, error)
	CheckoutLines(ctx context.Context, cartID uint) ([]CheckoutLine, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": cart.UserID,
		})
		return err
	}
	return nil
}

// GetOrCreateByUserID inserts the user's cart unless one exists, then reads
// it back. Two concurrent callers end up with the same row.
func (r *cartRepository) GetOrCreateByUserID(ctx context.Context, userID uint) (*model.Cart, error) {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&model.Cart{UserID: userID}).Error
	if err != nil {
		logger.Error("Failed to upsert cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var cart model.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}

	logger.Debug("Cart resolved for user", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})
	return &cart, nil
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByUserID reads the cart with FOR UPDATE. Only meaningful inside a
// transaction; SQLite ignores the lock clause.
func (r *cartRepository) LockByUserID(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddOrIncrementItem inserts the (cart, product) row or adds quantity to the
// existing one in a single statement, so concurrent adds never lose an
// increment.
func (r *cartRepository) AddOrIncrementItem(ctx context.Context, cartID, productID uint, quantity int) (*model.CartItem, error) {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	db := r.db.WithContext(ctx)
	item := model.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + excluded.quantity")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
	}).Omit(clause.Associations).Create(&item).Error
	if err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return nil, err
	}

	var merged model.CartItem
	err = db.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&merged).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Cart item upserted in database", map[string]interface{}{
		"cart_item_id": merged.ID,
		"quantity":     merged.Quantity,
	})
	return &merged, nil
}

func (r *cartRepository) ListItems(ctx context.Context, cartID uint) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to list cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return items, nil
}

// FindItem returns the item only if it belongs to cartID.
func (r *cartRepository) FindItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update cart item in database", result.Error, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, itemID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item from database", result.Error, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to clear cart items in database", result.Error, map[string]interface{}{
			"cart_id": cartID,
		})
		return 0, result.Error
	}

	logger.Debug("Cart items cleared in database", map[string]interface{}{
		"cart_id": cartID,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// CheckoutLines joins the cart's items with the products' current prices.
func (r *cartRepository) CheckoutLines(ctx context.Context, cartID uint) ([]CheckoutLine, error) {
	var lines []CheckoutLine
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.product_id, cart_items.quantity, products.price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
