package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/upsell"
	"github.com/yashrajoria/storefront/views"
	"go.uber.org/zap"
)

const upsellBody = `{"products":[{"id":"p1","title":"Kikoy","handle":"kikoy",
	"images":{"nodes":[{"url":"https://cdn.example.com/kikoy.jpg"}]},
	"variants":{"nodes":[{"id":"gid://shopify/ProductVariant/1","price":{"amount":"1250","currencyCode":"KES"}}]}}]}`

func sampleCart(id string, subtotal string) *models.Cart {
	amount := models.Money{Amount: decimal.RequireFromString(subtotal), CurrencyCode: "KES"}
	return &models.Cart{
		ID:            id,
		TotalQuantity: 1,
		Cost:          models.CartCost{SubtotalAmount: amount, TotalAmount: amount},
		Lines: models.CartLineConnection{Nodes: []models.CartLine{{
			ID: "l1", Quantity: 1, Cost: models.CartLineCost{TotalAmount: amount},
			Merchandise: models.CartMerchandise{ID: "v9", Product: models.CartProductSummary{Title: "Shuka", Handle: "shuka"}},
		}}},
	}
}

func cartRouter(t *testing.T, carts *fakeCartService, fetcher upsell.Fetcher, wait time.Duration) *gin.Engine {
	t.Helper()
	view, err := views.NewCartView(views.Config{})
	require.NoError(t, err)
	ctrl := NewCartController(carts, view, wait, false)

	r := gin.New()
	provider := middleware.UpsellProvider(func(*gin.Context) upsell.Fetcher { return fetcher }, zap.NewNop())
	for _, prefix := range []string{"", "/:locale"} {
		g := r.Group(prefix+"/cart", provider)
		g.GET("", ctrl.Show)
		g.POST("/lines", ctrl.AddLines)
	}
	return r
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestShow_RendersCartWithUpsell(t *testing.T) {
	carts := &fakeCartService{cart: sampleCart("gid://shopify/Cart/c1", "150")}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "gid://shopify/Cart/c1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	doc := parse(t, w)
	assert.Equal(t, 1, doc.Find(".upsell-product").Length())
	assert.Contains(t, doc.Find(".shipping-banner__message").Text(), "KSh 50")
	assert.Equal(t, []string{"gid://shopify/Cart/c1"}, carts.getIDs)
}

func TestShow_UpsellErrorDoesNotFailPage(t *testing.T) {
	r := cartRouter(t, &fakeCartService{}, &fakeFetcher{status: 500, body: `{"error":"Failed to fetch products"}`}, time.Second)

	w := get(r, "/cart?layout=aside")
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Failed to fetch products", doc.Find(".cart-upsell--error").Text())
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
	_, hidden := doc.Find(".cart-empty").Attr("hidden")
	assert.False(t, hidden)
}

func TestShow_SlowUpsellRendersSkeleton(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	r := cartRouter(t, &fakeCartService{}, &fakeFetcher{status: 200, body: upsellBody, block: block}, 10*time.Millisecond)

	w := get(r, "/cart")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, views.SkeletonCount, parse(t, w).Find(".upsell-skeleton").Length())
}

func TestShow_CartLoadFailure(t *testing.T) {
	carts := &fakeCartService{getErr: apperrors.Wrap(apperrors.ErrCartLoad, errors.New("timeout"))}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: `{"products":[]}`}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "c1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load cart"}`, w.Body.String())
}

func TestShow_WithoutProvider(t *testing.T) {
	view, err := views.NewCartView(views.Config{})
	require.NoError(t, err)
	r := gin.New()
	r.GET("/cart", NewCartController(&fakeCartService{}, view, 0, false).Show)

	w := get(r, "/cart")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func postForm(r http.Handler, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: CartCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddLines_CreatesCartAndSetsCookie(t *testing.T) {
	carts := &fakeCartService{added: sampleCart("gid://shopify/Cart/new", "1250")}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	w := postForm(r, "/cart/lines", url.Values{
		"product_id":     {"p1"},
		"merchandise_id": {"gid://shopify/ProductVariant/1"},
		"quantity":       {"1"},
	}, "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, carts.adds, 1)
	assert.Equal(t, "", carts.adds[0].cartID)
	assert.Equal(t, []models.CartLineInput{{MerchandiseID: "gid://shopify/ProductVariant/1", Quantity: 1}}, carts.adds[0].lines)

	doc := parse(t, w)
	assert.Equal(t, views.ToastAdded, doc.Find(".toast").Text())
	assert.True(t, doc.Find(".toast").HasClass("toast--success"))
	assert.Contains(t, doc.Find(".shipping-banner__message").Text(), "Free Shipping")

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CartCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	id, err := url.QueryUnescape(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/new", id)
	assert.True(t, cookie.HttpOnly)
}

func TestAddLines_FailureShowsDistinctToast(t *testing.T) {
	carts := &fakeCartService{
		cart:   sampleCart("c1", "150"),
		addErr: apperrors.Wrap(apperrors.ErrCartMutation, errors.New("sold out")),
	}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	w := postForm(r, "/en-ke/cart/lines", url.Values{"product_id": {"p1"}, "merchandise_id": {"v1"}}, "c1")

	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, views.ToastFailed, doc.Find(".toast").Text())
	assert.True(t, doc.Find(".toast").HasClass("toast--error"))
	assert.Equal(t, 1, doc.Find(".cart-line").Length(), "current cart is still shown")
	assert.Empty(t, w.Result().Cookies())
}

func TestAddLines_ExistingCartKeepsCookie(t *testing.T) {
	carts := &fakeCartService{added: sampleCart("c1", "300")}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	w := postForm(r, "/cart/lines", url.Values{"merchandise_id": {"v1"}, "layout": {"aside"}}, "c1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", carts.adds[0].cartID)
	assert.Empty(t, w.Result().Cookies())
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
}

func TestAddLines_MissingVariant(t *testing.T) {
	carts := &fakeCartService{}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	w := postForm(r, "/cart/lines", url.Values{"product_id": {"p1"}}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid input"}`, w.Body.String())
	assert.Empty(t, carts.adds)
}

func TestShow_ExpiredCartClearsCookie(t *testing.T) {
	carts := &fakeCartService{}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "gone"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cleared *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CartCookie {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestShow_RowBusyWhileAddInFlight(t *testing.T) {
	carts := &fakeCartService{
		cart:       sampleCart("c1", "150"),
		added:      sampleCart("c1", "1400"),
		addStarted: make(chan struct{}),
		addBlock:   make(chan struct{}),
	}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	posted := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		posted <- postForm(r, "/cart/lines", url.Values{"product_id": {"p1"}, "merchandise_id": {"gid://shopify/ProductVariant/1"}}, "c1")
	}()
	<-carts.addStarted

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "c1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	button := parse(t, w).Find(`.upsell-product[data-product-id="p1"] button`)
	_, disabled := button.Attr("disabled")
	assert.True(t, disabled, "a second render of the same cart sees the row busy")

	close(carts.addBlock)
	pw := <-posted
	require.Equal(t, http.StatusOK, pw.Code)
	assert.Equal(t, views.ToastAdded, parse(t, pw).Find(".toast").Text())
}

func TestAddLines_RecreatedCartResetsCookie(t *testing.T) {
	carts := &fakeCartService{added: sampleCart("gid://shopify/Cart/fresh", "1250")}
	r := cartRouter(t, carts, &fakeFetcher{status: 200, body: upsellBody}, time.Second)

	w := postForm(r, "/cart/lines", url.Values{"merchandise_id": {"v1"}}, "expired")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "expired", carts.adds[0].cartID)
	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CartCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	id, err := url.QueryUnescape(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/fresh", id)
}
