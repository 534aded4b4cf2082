package controllers

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/upsell"
	"github.com/yashrajoria/storefront/views"
	"go.uber.org/zap"
)

const (
	CartCookie       = "cart"
	cartCookieMaxAge = 14 * 24 * 60 * 60
)

type CartController struct {
	carts        services.CartService
	view         *views.CartView
	rows         *views.RowRegistry
	renderWait   time.Duration
	secureCookie bool
}

// NewCartController creates the cart page handlers. renderWait bounds how long a render
// waits for the upsell fetch before showing the loading skeleton.
func NewCartController(carts services.CartService, view *views.CartView, renderWait time.Duration, secureCookie bool) *CartController {
	return &CartController{
		carts:        carts,
		view:         view,
		rows:         views.NewRowRegistry(views.DefaultToastDuration),
		renderWait:   renderWait,
		secureCookie: secureCookie,
	}
}

type addLinesForm struct {
	ProductID     string `form:"product_id"`
	MerchandiseID string `form:"merchandise_id" binding:"required"`
	Layout        string `form:"layout"`
}

// Show renders the cart page (or the aside fragment with ?layout=aside).
func (cc *CartController) Show(c *gin.Context) {
	locale, ok := localeParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	src, err := upsell.FromContext(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	cartID := cc.cartID(c)
	cart, err := cc.carts.GetCart(ctx, cartID, locale)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if cart == nil && cartID != "" {
		cc.clearCartCookie(c)
	}

	cc.render(c, views.Page{
		Cart:   cart,
		Layout: views.ParseLayout(c.Query("layout")),
		Locale: locale,
		Upsell: cc.awaitUpsell(ctx, src),
		Rows:   cc.rows.Peek(cartID),
	})
}

// AddLines handles the upsell add-to-cart form and re-renders the cart with the toast.
func (cc *CartController) AddLines(c *gin.Context) {
	locale, ok := localeParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var form addLinesForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}
	if form.ProductID == "" {
		form.ProductID = form.MerchandiseID
	}

	src, err := upsell.FromContext(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	cartID := cc.cartID(c)
	rows, release := cc.rows.Acquire(cartID)
	defer release()

	cart, err := rows.AddToCart(ctx, form.ProductID, form.MerchandiseID,
		views.CartLinesAdderFunc(func(ctx context.Context, lines []models.CartLineInput) (*models.Cart, error) {
			return cc.carts.AddLines(ctx, cartID, lines, locale)
		}))
	if err != nil {
		_ = c.Error(err)
		logger.Warn(ctx, "add to cart failed", zap.String("merchandise_id", form.MerchandiseID), zap.Error(err))
		// Show the cart as it stands; the toast carries the failure.
		if cart, err = cc.carts.GetCart(ctx, cartID, locale); err != nil {
			_ = c.Error(err)
		} else if cart == nil && cartID != "" {
			cc.clearCartCookie(c)
		}
	} else if cart != nil && cart.ID != cartID {
		cc.setCartCookie(c, cart.ID)
	}

	cc.render(c, views.Page{
		Cart:   cart,
		Layout: views.ParseLayout(form.Layout),
		Locale: locale,
		Upsell: cc.awaitUpsell(ctx, src),
		Rows:   rows,
	})
}

// Script serves the cart's client behaviour: toast dismissal, row busy state and the
// close-aside action.
func (cc *CartController) Script(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/javascript; charset=utf-8", views.Script())
}

func (cc *CartController) setCartCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CartCookie, id, cartCookieMaxAge, "/", "", cc.secureCookie, true)
}

func (cc *CartController) clearCartCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CartCookie, "", -1, "/", "", cc.secureCookie, true)
}

func (cc *CartController) cartID(c *gin.Context) string {
	id, err := c.Cookie(CartCookie)
	if err != nil {
		return ""
	}
	return id
}

// awaitUpsell gives the fetch up to renderWait to settle. On timeout the source is
// rendered as it is, which is the loading skeleton.
func (cc *CartController) awaitUpsell(ctx context.Context, src *upsell.Source) views.UpsellReader {
	if cc.renderWait <= 0 {
		return src
	}
	waitCtx, cancel := context.WithTimeout(ctx, cc.renderWait)
	defer cancel()
	_, _ = src.Wait(waitCtx)
	return src
}

func (cc *CartController) render(c *gin.Context, page views.Page) {
	var buf bytes.Buffer
	if err := cc.view.Render(&buf, page); err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
