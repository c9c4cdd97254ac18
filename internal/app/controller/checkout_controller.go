package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/e4rthen/storefront-backend/internal/app/service"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// CheckoutRequest carries the shipping details copied onto the order.
// ShippingCost may be a JSON number or a string; absent or null means zero.
type CheckoutRequest struct {
	FullName       string          `json:"full_name"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	PostalCode     string          `json:"postal_code"`
	PaymentMethod  string          `json:"payment_method"`
	ShippingOption string          `json:"shipping_option"`
	ShippingCost   json.RawMessage `json:"shipping_cost"`
}

func (r CheckoutRequest) shippingCost() string {
	raw := strings.TrimSpace(string(r.ShippingCost))
	if raw == "null" {
		return ""
	}
	return strings.Trim(raw, `"`)
}

// Checkout converts the caller's cart into an order
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentity(c)

	var req CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warn("Invalid checkout request", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout request")
			return
		}
	}

	order, err := ctrl.checkoutService.Checkout(c.Request.Context(), identity, service.ShippingDetails{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		PostalCode:     req.PostalCode,
		PaymentMethod:  req.PaymentMethod,
		ShippingOption: req.ShippingOption,
		ShippingCost:   req.shippingCost(),
	})
	if err != nil {
		fail(c, log, "Checkout failed", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		return
	}

	c.JSON(http.StatusCreated, order)
}
