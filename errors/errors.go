package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error. Message is the only part a client ever sees.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
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

// Is matches on code and message so wrapped copies compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// JSON returns the client envelope as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Body returns the client envelope for gin handlers.
func (e *Error) Body() gin.H {
	return gin.H{"error": e.Message}
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause.
func Wrap(base *Error, err error) *Error {
	return New(base.Code, base.Message, err)
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrTooManyRequest = New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
	ErrInvalidInput   = New(http.StatusBadRequest, "Invalid input", nil)
)

// Storefront error types
var (
	ErrFetchProducts = New(http.StatusInternalServerError, "Failed to fetch products", nil)
	ErrCartLoad      = New(http.StatusBadGateway, "Failed to load cart", nil)
	ErrCartMutation  = New(http.StatusBadGateway, "Could not add to cart", nil)
)

// HandleError writes err as a JSON envelope on a plain ResponseWriter.
func HandleError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*Error)
	if !ok {
		appErr = Wrap(ErrInternalServer, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_, _ = w.Write([]byte(appErr.JSON()))
}

// ErrorMiddleware renders the last error attached with c.Error as a JSON envelope.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		appErr, ok := err.(*Error)
		if !ok {
			appErr = Wrap(ErrInternalServer, err)
		}
		c.AbortWithStatusJSON(appErr.Code, appErr.Body())
	}
}
