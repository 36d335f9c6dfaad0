package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	productController   *controller.ProductController
	categoryController  *controller.CategoryController
	reviewController    *controller.ReviewController
	cartController      *controller.CartController
	liveCartController  *controller.LiveCartController
	orderController     *controller.OrderController
	addressController   *controller.AddressController
	uploadController    *controller.UploadController
	dashboardController *controller.DashboardController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Auth      *controller.AuthController
	Product   *controller.ProductController
	Category  *controller.CategoryController
	Review    *controller.ReviewController
	Cart      *controller.CartController
	LiveCart  *controller.LiveCartController
	Order     *controller.OrderController
	Address   *controller.AddressController
	Upload    *controller.UploadController
	Dashboard *controller.DashboardController
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      controllers.Auth,
		productController:   controllers.Product,
		categoryController:  controllers.Category,
		reviewController:    controllers.Review,
		cartController:      controllers.Cart,
		liveCartController:  controllers.LiveCart,
		orderController:     controllers.Order,
		addressController:   controllers.Address,
		uploadController:    controllers.Upload,
		dashboardController: controllers.Dashboard,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	authenticated := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.POST("/logout", authenticated, r.authController.Logout)
			auth.GET("/me", authenticated, r.authController.GetMe)
			auth.PUT("/me", authenticated, r.authController.UpdateMe)
			auth.PUT("/password", authenticated, r.authController.ChangePassword)
			auth.POST("/avatar", authenticated, r.uploadController.UploadAvatar)
		}

		v1.GET("/categories", r.categoryController.ListCategories)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/featured", r.productController.Featured)
			products.GET("/new-arrivals", r.productController.NewArrivals)
			products.GET("/suggestions", r.productController.Suggestions)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/:id/reviews", r.reviewController.ListReviews)
			products.POST("/:id/reviews", authenticated, r.reviewController.CreateReview)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", optional, r.cartController.GetCart)
			cart.DELETE("", optional, r.cartController.ClearCart)
			cart.POST("/items", optional, r.cartController.AddToCart)
			cart.PUT("/items", optional, r.cartController.UpdateCartItem)
			cart.DELETE("/items", optional, r.cartController.RemoveFromCart)
			cart.POST("/merge", authenticated, r.cartController.MergeCart)
			cart.GET("/ws", optional, r.liveCartController.HandleWebSocket)
		}

		orders := v1.Group("/orders")
		orders.Use(authenticated)
		{
			orders.GET("", r.orderController.GetOrders)
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/:id", r.orderController.GetOrderByID)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(authenticated)
		{
			addresses.GET("", r.addressController.GetAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
		}

		admin := v1.Group("/admin")
		admin.Use(authenticated, r.authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.POST("/categories", r.categoryController.CreateCategory)
			admin.PUT("/categories/:id", r.categoryController.UpdateCategory)
			admin.DELETE("/categories/:id", r.categoryController.DeleteCategory)

			admin.GET("/orders", r.orderController.ListAllOrders)
			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)

			admin.GET("/dashboard", r.dashboardController.GetStats)
			admin.GET("/dashboard/charts", r.dashboardController.GetCharts)
			admin.GET("/dashboard/export", r.dashboardController.ExportOrders)

			admin.POST("/upload/image", r.uploadController.UploadImage)
			admin.POST("/upload/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", controller.CartSessionHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", controller.CartSessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cors.New(cfg)
	}

	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
