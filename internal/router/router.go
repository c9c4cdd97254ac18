package router

import (
	"net/http"

	"github.com/e4rthen/storefront-backend/config"
	"github.com/e4rthen/storefront-backend/internal/app/controller"
	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/e4rthen/storefront-backend/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	orderController    *controller.OrderController
	reportController   *controller.ReportController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	httpMetrics        *metrics.HTTPMetrics
	gatherer           prometheus.Gatherer
	config             *config.Config
}

// NewRouter wires the controllers. uploadController is nil when object
// storage is not configured; its route is then not registered.
func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	reportController *controller.ReportController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		cartController:     cartController,
		checkoutController: checkoutController,
		orderController:    orderController,
		reportController:   reportController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		httpMetrics:        httpMetrics,
		gatherer:           gatherer,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.httpMetrics))
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})
	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(r.gatherer)))
	}

	authenticated := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/token", r.authController.Token)
			auth.POST("/token/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", authenticated, r.authController.Me)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.POST("", authenticated, adminOnly, r.productController.CreateProduct)
		}

		cart := v1.Group("/cart", authenticated)
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.GET("/items", r.cartController.ListItems)
			cart.POST("/items", r.cartController.AddItem)
			cart.GET("/items/:id", r.cartController.GetItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
		}

		v1.POST("/checkout", authenticated, r.checkoutController.Checkout)

		orders := v1.Group("/orders", authenticated)
		{
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
		}

		admin := v1.Group("/admin", authenticated, adminOnly)
		{
			admin.GET("/reports/orders", r.reportController.DailyOrders)
			if r.uploadController != nil {
				admin.POST("/uploads/presigned-url", r.uploadController.GeneratePresignedURL)
			}
		}
	}

	return router
}
