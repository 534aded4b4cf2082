package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/services"
)

type UpsellController struct {
	service services.UpsellService
}

func NewUpsellController(service services.UpsellService) *UpsellController {
	return &UpsellController{service: service}
}

// ListProducts answers GET /api/cart-upsell-products with {"products": [...]}.
// Every failure is the same generic 500 envelope.
func (u *UpsellController) ListProducts(c *gin.Context) {
	locale, ok := localeParam(c)
	if !ok {
		return
	}

	products, err := u.service.ListUpsellProducts(c.Request.Context(), locale)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apperrors.ErrFetchProducts.Body())
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
