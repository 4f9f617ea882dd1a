package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"checkout-service/apperrors"
	"checkout-service/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondError writes err as {"error": message} with the status of its kind.
// Gateway and internal failures are logged; their cause never reaches the client.
func (cc *CheckoutController) respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	log := cc.logger.With(zap.String("request_id", logger.RequestID(c)))
	if appErr.Code >= http.StatusInternalServerError {
		log.Error(appErr.Message,
			zap.String("path", c.FullPath()),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(err),
		)
	} else {
		log.Warn(appErr.Message, zap.String("path", c.FullPath()))
	}
	_ = c.Error(appErr)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

func (cc *CheckoutController) respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": bindErrorDetails(err)})
}

// bindErrorDetails turns validator failures into "field: reason" lines.
func bindErrorDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"malformed JSON body"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s: %s", jsonFieldName(fe.Field()), describeTag(fe)))
	}
	return details
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// jsonFieldName maps struct field names to their JSON keys.
func jsonFieldName(field string) string {
	switch field {
	case "PI":
		return "pi"
	case "ClientSecret":
		return "clientSecret"
	default:
		return strings.ToLower(field)
	}
}
