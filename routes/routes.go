package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/views"
)

type Handlers struct {
	Health *controllers.HealthController
	Upsell *controllers.UpsellController
	Cart   *controllers.CartController
	// UpsellProvider mounts the upsell source for cart renders.
	UpsellProvider gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET(views.ScriptPath, h.Cart.Script)

	// JSON catalog proxy, with and without the locale prefix.
	r.GET("/api/cart-upsell-products", h.Upsell.ListProducts)
	r.GET("/:locale/api/cart-upsell-products", h.Upsell.ListProducts)

	cart := r.Group("/cart", h.UpsellProvider)
	{
		cart.GET("", h.Cart.Show)
		cart.POST("/lines", h.Cart.AddLines)
	}

	localized := r.Group("/:locale/cart", h.UpsellProvider)
	{
		localized.GET("", h.Cart.Show)
		localized.POST("/lines", h.Cart.AddLines)
	}
}
