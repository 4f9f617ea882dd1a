package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a checkout failure.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindGateway       Kind = "gateway"
	KindConfirmation  Kind = "confirmation"
	KindUnknownCharge Kind = "unknown_charge"
	KindInternal      Kind = "internal"
)

// Messages shown to buyers. Gateway failures never carry the processor's text.
const (
	MsgGatewayUnavailable = "payment processor unavailable"
	MsgInvalidPayment     = "Invalid payment information"
	MsgInternal           = "Internal server error"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validation reports bad or missing buyer input.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

// NotFound is a validation error for lookups by id.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, KindValidation, message, nil)
}

// Gateway wraps a failed call to the payment processor.
func Gateway(err error) *Error {
	return New(http.StatusBadGateway, KindGateway, MsgGatewayUnavailable, err)
}

// Confirmation carries the processor's decline or authentication message verbatim.
func Confirmation(message string) *Error {
	return New(http.StatusPaymentRequired, KindConfirmation, message, nil)
}

// UnknownCharge is returned when an intent has no succeeded charge.
func UnknownCharge() *Error {
	return New(http.StatusOK, KindUnknownCharge, MsgInvalidPayment, nil)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, KindInternal, MsgInternal, err)
}

// From returns err as an *Error, classifying unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// ErrorMiddleware renders the last error attached with c.Error as {"error": message}.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := From(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
	}
}
