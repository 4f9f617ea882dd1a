package controllers

import (
	"net/http"

	"checkout-service/apperrors"
	"checkout-service/config"
	"checkout-service/logger"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	unknownItemTitle = "Unknown item"
	invalidItemError = "Invalid item selected"
)

// CheckoutController serves the checkout pages and the intent lifecycle API.
type CheckoutController struct {
	checkout services.CheckoutService
	client   config.ClientConfig
	logger   *zap.Logger
}

func NewCheckoutController(checkout services.CheckoutService, client config.ClientConfig, logger *zap.Logger) *CheckoutController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutController{checkout: checkout, client: client, logger: logger}
}

// Home handles GET /.
func (cc *CheckoutController) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Items": cc.checkout.Items()})
}

// Checkout handles GET /checkout?item=<id>&curr=<code>. Unknown items render
// the page with an error instead of failing the request.
func (cc *CheckoutController) Checkout(c *gin.Context) {
	itemID := c.Query("item")
	currency := cc.checkout.ResolveCurrency(c.Query("curr"))

	item, err := cc.checkout.GetItem(c.Request.Context(), itemID)
	if err != nil {
		c.HTML(http.StatusOK, "checkout.html", gin.H{
			"Title":    unknownItemTitle,
			"Amount":   int64(0),
			"ItemID":   itemID,
			"Currency": currency,
			"Error":    invalidItemError,
		})
		return
	}

	c.HTML(http.StatusOK, "checkout.html", gin.H{
		"Title":    item.Title,
		"Amount":   item.Amount,
		"ItemID":   item.ID,
		"Currency": currency,
	})
}

// PaymentConfig handles GET /payment/config.
func (cc *CheckoutController) PaymentConfig(c *gin.Context) {
	c.JSON(http.StatusOK, cc.client)
}

// GetItem handles GET /item/:itemNumber.
func (cc *CheckoutController) GetItem(c *gin.Context) {
	item, err := cc.checkout.GetItem(c.Request.Context(), c.Param("itemNumber"))
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// InitPayment handles POST /init-payment. Any amount in the body is ignored.
func (cc *CheckoutController) InitPayment(c *gin.Context) {
	var req models.InitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cc.respondBindError(c, err)
		return
	}

	pi, err := cc.checkout.InitPayment(c.Request.Context(), &req)
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.InitPaymentResponse{PI: *pi})
}

// UpdateIntent handles POST /update-intent.
func (cc *CheckoutController) UpdateIntent(c *gin.Context) {
	var req models.UpdateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cc.respondBindError(c, err)
		return
	}

	secret, err := cc.checkout.UpdateIntent(c.Request.Context(), &req)
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UpdateIntentResponse{ClientSecret: secret})
}

// Success handles GET /success?pi=<id>.
func (cc *CheckoutController) Success(c *gin.Context) {
	receipt, err := cc.checkout.LookupReceipt(c.Request.Context(), c.Query("pi"))
	if err != nil {
		appErr := apperrors.From(err)
		if appErr.Code >= http.StatusInternalServerError {
			cc.logger.Error("Receipt lookup failed",
				zap.String("request_id", logger.RequestID(c)),
				zap.String("intent_id", c.Query("pi")),
				zap.Error(err),
			)
		}
		c.HTML(appErr.Code, "success.html", gin.H{"Error": appErr.Message})
		return
	}
	c.HTML(http.StatusOK, "success.html", gin.H{"Receipt": receipt})
}

// Health handles GET /health.
func (cc *CheckoutController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "checkout-service"})
}
