// Package router wires handlers into the HTTP engine.
package router

import (
	"net/http"

	"github.com/pharmacy/backend/internal/domain/identity"
	"github.com/pharmacy/backend/internal/infrastructure/auth"
	"github.com/pharmacy/backend/internal/infrastructure/logger"
	"github.com/pharmacy/backend/internal/interfaces/http/handler"
	"github.com/pharmacy/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config carries everything the router needs
type Config struct {
	Logger        *zap.Logger
	JWTService    *auth.JWTService
	Products      *handler.ProductHandler
	Inventory     *handler.InventoryHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
	Orders        *handler.OrderHandler
	Prescriptions *handler.PrescriptionHandler
	Payments      *handler.PaymentHandler
}

// New builds the HTTP engine with all routes registered
func New(cfg Config) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(logger.GinMiddleware(cfg.Logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	// storefront and webhooks need no authentication
	api.GET("/products", cfg.Products.List)
	api.GET("/products/:slug", cfg.Products.GetBySlug)
	api.POST("/webhooks/stripe", cfg.Payments.Webhook)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTService))
	{
		authed.GET("/cart", cfg.Cart.Get)
		authed.POST("/cart/items", cfg.Cart.AddItem)
		authed.PUT("/cart/items/:productId", cfg.Cart.UpdateItem)
		authed.DELETE("/cart/items/:productId", cfg.Cart.RemoveItem)
		authed.DELETE("/cart", cfg.Cart.Clear)

		authed.POST("/checkout", cfg.Checkout.Checkout)
		authed.POST("/checkout/resume", cfg.Checkout.Resume)

		authed.GET("/orders", cfg.Orders.List)
		authed.GET("/orders/active", cfg.Orders.GetActive)
		authed.GET("/orders/:id", cfg.Orders.Get)
		authed.POST("/orders/:id/cancel", cfg.Orders.Cancel)
		authed.POST("/orders/:id/prescription", cfg.Prescriptions.Upload)

		authed.POST("/payments/intent", cfg.Payments.CreateIntent)
	}

	pharmacist := api.Group("/pharmacist")
	pharmacist.Use(middleware.Auth(cfg.JWTService), middleware.RequireRole(identity.RolePharmacist))
	{
		pharmacist.GET("/prescriptions", cfg.Prescriptions.ListPending)
		pharmacist.GET("/prescriptions/:id/file", cfg.Prescriptions.FileURL)
		pharmacist.POST("/prescriptions/:id/approve", cfg.Prescriptions.Approve)
		pharmacist.POST("/prescriptions/:id/reject", cfg.Prescriptions.Reject)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(cfg.JWTService))
	{
		// stock management is open to pharmacists, the rest is admin only
		stock := admin.Group("")
		stock.Use(middleware.RequireRole(identity.RoleAdmin, identity.RolePharmacist))
		{
			stock.POST("/batches", cfg.Inventory.RegisterBatch)
			stock.POST("/batches/:id/block", cfg.Inventory.BlockBatch)
			stock.POST("/batches/:id/unblock", cfg.Inventory.UnblockBatch)
			stock.GET("/products/:id/batches", cfg.Inventory.ListBatches)
			stock.GET("/products/:id/stock", cfg.Inventory.Stock)
		}

		adminOnly := admin.Group("")
		adminOnly.Use(middleware.RequireRole(identity.RoleAdmin))
		{
			adminOnly.GET("/products", cfg.Products.ListAll)
			adminOnly.POST("/products", cfg.Products.Create)
			adminOnly.PATCH("/products/:id/active", cfg.Products.SetActive)
			adminOnly.POST("/orders/:id/refund", cfg.Payments.Refund)
		}
	}

	return engine
}
