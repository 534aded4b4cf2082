package errors

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsSentinelIdentity(t *testing.T) {
	cause := stderrors.New("storefront: 503")
	err := Wrap(ErrFetchProducts, cause)

	assert.True(t, stderrors.Is(err, ErrFetchProducts))
	assert.True(t, stderrors.Is(err, cause))
	assert.Nil(t, ErrFetchProducts.Err, "sentinel must not be mutated")
	assert.Equal(t, `{"error":"Failed to fetch products"}`, err.JSON())
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, stderrors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/cart", func(c *gin.Context) {
		_ = c.Error(Wrap(ErrCartLoad, stderrors.New("timeout")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load cart"}`, w.Body.String())
}
