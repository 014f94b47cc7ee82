package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
)

type Deps struct {
	AuthHandler      *AuthHandler
	ProductHandler   *ProductHandler
	CartHandler      *CartHandler
	AddressHandler   *AddressHandler
	OrderHandler     *OrderHandler
	DashboardHandler *DashboardHandler
	JWTSecret        []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")
	login := auth.RequireLogin(d.JWTSecret)

	authg := api.Group("/auth")
	authg.POST("/register", d.AuthHandler.Register)
	authg.POST("/login", d.AuthHandler.Login)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.GET("/:id", d.ProductHandler.Get)
	sellerProducts := products.Group("", login, auth.RequireSeller)
	sellerProducts.POST("", d.ProductHandler.Create)
	sellerProducts.PATCH("/:id", d.ProductHandler.Update)
	sellerProducts.DELETE("/:id", d.ProductHandler.Delete)
	sellerProducts.POST("/:id/images", d.ProductHandler.AddImage)

	cart := api.Group("/cart", login)
	cart.GET("", d.CartHandler.Get)
	cart.GET("/count", d.CartHandler.Count)
	cart.POST("", d.CartHandler.Add)
	cart.PATCH("/:id", d.CartHandler.UpdateQuantity)
	cart.DELETE("/:id", d.CartHandler.Remove)
	cart.DELETE("", d.CartHandler.Clear)

	addresses := api.Group("/addresses", login)
	addresses.GET("", d.AddressHandler.List)
	addresses.GET("/:id", d.AddressHandler.Get)
	addresses.POST("", d.AddressHandler.Create)
	addresses.PUT("/:id", d.AddressHandler.Update)
	addresses.DELETE("/:id", d.AddressHandler.Delete)
	addresses.POST("/:id/default", d.AddressHandler.SetDefault)

	orders := api.Group("/orders", login)
	orders.POST("", d.OrderHandler.Checkout)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.GET("/:id/confirmation", d.OrderHandler.Confirmation)
	orders.POST("/:id/cancel", d.OrderHandler.Cancel)

	seller := api.Group("/seller", login, auth.RequireSeller)
	seller.GET("/orders", d.OrderHandler.SellerList)
	seller.POST("/orders/:id/status", d.OrderHandler.UpdateStatus)
	seller.GET("/dashboard", d.DashboardHandler.Overview)
	seller.GET("/dashboard/inventory", d.DashboardHandler.Inventory)
	seller.GET("/dashboard/analytics", d.DashboardHandler.Analytics)
}
