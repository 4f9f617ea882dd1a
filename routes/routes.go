package routes

import (
	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterCheckoutRoutes mounts the pages and the intent API. Only the two
// endpoints that create or mutate intents are rate limited.
func RegisterCheckoutRoutes(r *gin.Engine, cc *controllers.CheckoutController, limiter *middleware.RateLimiter) {
	r.GET("/", cc.Home)
	r.GET("/checkout", cc.Checkout)
	r.GET("/success", cc.Success)
	r.GET("/health", cc.Health)

	r.GET("/payment/config", cc.PaymentConfig)
	r.GET("/item/:itemNumber", cc.GetItem)

	intents := r.Group("/")
	if limiter != nil {
		intents.Use(limiter.Middleware())
	}
	intents.POST("/init-payment", cc.InitPayment)
	intents.POST("/update-intent", cc.UpdateIntent)
}
