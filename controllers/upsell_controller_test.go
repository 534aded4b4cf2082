package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func upsellRouter(svc *fakeUpsellService) *gin.Engine {
	r := gin.New()
	ctrl := NewUpsellController(svc)
	r.GET("/api/cart-upsell-products", ctrl.ListProducts)
	r.GET("/:locale/api/cart-upsell-products", ctrl.ListProducts)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListProducts_OK(t *testing.T) {
	svc := &fakeUpsellService{products: []models.Product{{ID: "p1", Title: "Kikoy", Handle: "kikoy"}}}
	w := get(upsellRouter(svc), "/api/cart-upsell-products")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var body struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "kikoy", body.Products[0].Handle)
}

func TestListProducts_PassesProductsThroughUnchanged(t *testing.T) {
	in := `[{"id":"1","title":"Kanga","handle":"kanga","description":"",` +
		`"images":{"nodes":[{"url":"u","altText":null}]},` +
		`"variants":{"nodes":[{"id":"v1","price":{"amount":"29.90","currencyCode":"KES"}},` +
		`{"id":"v2","price":{"amount":"n/a","currencyCode":"KES"}}]}}]`
	var products []models.Product
	require.NoError(t, json.Unmarshal([]byte(in), &products))

	w := get(upsellRouter(&fakeUpsellService{products: products}), "/api/cart-upsell-products")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"products":`+in+`}`, w.Body.String())
}

func TestListProducts_EmptyIsList(t *testing.T) {
	w := get(upsellRouter(&fakeUpsellService{products: []models.Product{}}), "/api/cart-upsell-products")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"products":[]}`, w.Body.String())
}

func TestListProducts_FailureIsGeneric500(t *testing.T) {
	for name, err := range map[string]error{
		"wrapped":   apperrors.Wrap(apperrors.ErrFetchProducts, errors.New("dial tcp: secret-host:443")),
		"unwrapped": errors.New("graphql: Access denied for token shpat_123"),
	} {
		t.Run(name, func(t *testing.T) {
			w := get(upsellRouter(&fakeUpsellService{err: err}), "/api/cart-upsell-products")

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, `{"error":"Failed to fetch products"}`, w.Body.String())
		})
	}
}

func TestListProducts_Locale(t *testing.T) {
	svc := &fakeUpsellService{products: []models.Product{}}
	w := get(upsellRouter(svc), "/sw-ke/api/cart-upsell-products")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.locales, 1)
	assert.Equal(t, models.Locale{Language: "SW", Country: "KE"}, svc.locales[0])
}

func TestListProducts_BadLocale(t *testing.T) {
	svc := &fakeUpsellService{}
	w := get(upsellRouter(svc), "/nowhere/api/cart-upsell-products")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	assert.Empty(t, svc.locales)
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthController().Health)

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
