package controller

import (
	"net/http"

	"github.com/e4rthen/storefront-backend/internal/app/service"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// ListOrders returns the caller's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	orders, err := ctrl.orderService.ListOrders(c.Request.Context(), identity)
	if err != nil {
		fail(c, log, "Failed to list orders", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one of the caller's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), identity, orderID)
	if err != nil {
		fail(c, log, "Failed to fetch order", err, map[string]interface{}{
			"user_id":  identity.UserID,
			"order_id": orderID,
		})
		return
	}

	c.JSON(http.StatusOK, order)
}
