// Package handler exposes the HTTP API: catalog, carts, orders, and accounts.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/avdeyev/storefront/internal/domain/cart"
	"github.com/avdeyev/storefront/internal/domain/order"
	"github.com/avdeyev/storefront/internal/domain/product"
	"github.com/avdeyev/storefront/internal/domain/user"
	"github.com/avdeyev/storefront/internal/token"
)

// Handler wires the domain services to echo routes.
type Handler struct {
	products *product.Service
	carts    *cart.Service
	orders   *order.Service
	users    *user.Service
	tokens   *token.Issuer
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products *product.Service,
	carts *cart.Service,
	orders *order.Service,
	users *user.Service,
	tokens *token.Issuer,
) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		orders:   orders,
		users:    users,
		tokens:   tokens,
	}
}

// Register mounts all API routes under /api.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")

	// Accounts.
	api.POST("/register", h.RegisterUser)
	api.POST("/login", h.Login)
	api.POST("/token/refresh", h.RefreshToken)
	api.POST("/logout", h.Logout)
	api.GET("/me", h.Me, h.RequireAuth)

	// Catalog: reads are public, writes are staff-only.
	api.GET("/products", h.ListProducts)
	api.GET("/products/:slug", h.GetProduct)
	api.POST("/products", h.CreateProduct, h.RequireAuth, h.RequireStaff)
	api.PUT("/products/:slug", h.UpdateProduct, h.RequireAuth, h.RequireStaff)
	api.DELETE("/products/:slug", h.DeleteProduct, h.RequireAuth, h.RequireStaff)

	// Carts are anonymous; possession of the UUID is the capability.
	api.POST("/carts", h.CreateCart)
	api.GET("/carts/:id", h.GetCart)
	api.DELETE("/carts/:id", h.DeleteCart)
	api.POST("/carts/:id/items", h.AddCartItem)
	api.PUT("/carts/:id/items/:productID", h.UpdateCartItem)
	api.DELETE("/carts/:id/items/:productID", h.RemoveCartItem)

	// Orders require an account.
	api.POST("/carts/:id/convert", h.ConvertCart, h.RequireAuth)
	api.GET("/orders", h.ListOrders, h.RequireAuth)
	api.GET("/orders/:id", h.GetOrder, h.RequireAuth)
}
