package controller

import (
	"net/http"

	"github.com/e4rthen/storefront-backend/internal/app/service"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// AddToCartRequest defaults Quantity to 1 when omitted.
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the caller's cart with a subtotal
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), identity)
	if err != nil {
		fail(c, log, "Failed to fetch cart", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       cart.ID,
		"items":    cart.Items,
		"count":    len(cart.Items),
		"subtotal": cart.Subtotal().StringFixed(2),
	})
}

// ClearCart removes every item from the caller's cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	if err := ctrl.cartService.ClearCart(c.Request.Context(), identity); err != nil {
		fail(c, log, "Failed to clear cart", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// ListItems returns the caller's cart items
// GET /api/v1/cart/items
func (ctrl *CartController) ListItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	items, err := ctrl.cartService.ListItems(c.Request.Context(), identity)
	if err != nil {
		fail(c, log, "Failed to list cart items", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

// AddItem adds a product to the cart, merging with an existing line
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), identity, req.ProductID, quantity)
	if err != nil {
		fail(c, log, "Failed to add item to cart", err, map[string]interface{}{
			"user_id":    identity.UserID,
			"product_id": req.ProductID,
		})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetItem returns one of the caller's cart items
// GET /api/v1/cart/items/:id
func (ctrl *CartController) GetItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := ctrl.cartService.GetItem(c.Request.Context(), identity, itemID)
	if err != nil {
		fail(c, log, "Failed to fetch cart item", err, map[string]interface{}{
			"user_id":      identity.UserID,
			"cart_item_id": itemID,
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem sets the quantity of one of the caller's cart items
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity is required")
		return
	}

	item, err := ctrl.cartService.UpdateItemQuantity(c.Request.Context(), identity, itemID, req.Quantity)
	if err != nil {
		fail(c, log, "Failed to update cart item", err, map[string]interface{}{
			"user_id":      identity.UserID,
			"cart_item_id": itemID,
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// RemoveItem deletes one of the caller's cart items
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), identity, itemID); err != nil {
		fail(c, log, "Failed to remove cart item", err, map[string]interface{}{
			"user_id":      identity.UserID,
			"cart_item_id": itemID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
