package httpapi

import (
	"net/http"
	"time"

	"storefront/internal/http-api/handler"
	"storefront/internal/http-api/middleware"
	"storefront/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything route registration needs.
type RouterDeps struct {
	Auth       *handler.AuthHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Orders     *handler.OrderHandler
	Payments   *handler.PaymentHandler
	Contact    *handler.ContactHandler

	AuthService       service.AuthService
	RefreshRateLimit  int
	RefreshRateWindow time.Duration
}

// SetupRouter registers all routes. Only /auth/refresh sits behind the rate
// limiter; login and logout are not limited here.
func SetupRouter(r *gin.Engine, deps RouterDeps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", deps.Auth.Register)
		authRoutes.POST("/login", deps.Auth.Login)
		authRoutes.POST("/refresh",
			middleware.RateLimit(deps.RefreshRateLimit, deps.RefreshRateWindow),
			deps.Auth.Refresh,
		)
		authRoutes.POST("/logout", deps.Auth.Logout)
	}

	// Public catalog + contact form
	r.GET("/products", deps.Products.List)
	r.GET("/products/:id", deps.Products.Get)
	r.GET("/categories", deps.Categories.List)
	r.GET("/categories/:id", deps.Categories.Get)
	r.POST("/contact", deps.Contact.Submit)

	// Authenticated customer routes
	authed := r.Group("/", middleware.AuthMiddleware(deps.AuthService))
	{
		authed.POST("/orders", deps.Orders.Create)
		authed.GET("/orders", deps.Orders.List)
		authed.GET("/orders/:id", deps.Orders.Get)
		authed.POST("/payments/intent", deps.Payments.CreateIntent)
	}

	// Admin routes
	admin := r.Group("/admin", middleware.AuthMiddleware(deps.AuthService), middleware.RequireAdmin())
	{
		admin.POST("/products", deps.Products.Create)
		admin.PUT("/products/:id", deps.Products.Update)
		admin.DELETE("/products/:id", deps.Products.Delete)
		admin.POST("/categories", deps.Categories.Create)
		admin.PUT("/categories/:id", deps.Categories.Update)
		admin.DELETE("/categories/:id", deps.Categories.Delete)
		admin.PATCH("/orders/:id/status", deps.Orders.UpdateStatus)
		admin.GET("/contact-messages", deps.Contact.ListMessages)
		admin.POST("/users/:id/promote", deps.Auth.Promote)
	}
}
