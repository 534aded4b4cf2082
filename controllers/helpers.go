package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
)

// abortWithError records err for the request logger and writes its client envelope.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	c.AbortWithStatusJSON(appErr.Code, appErr.Body())
}

// localeParam reads the optional :locale segment. An unrecognised prefix is a 404.
func localeParam(c *gin.Context) (models.Locale, bool) {
	locale, ok := models.ParseLocale(c.Param("locale"))
	if !ok {
		abortWithError(c, apperrors.ErrNotFound)
	}
	return locale, ok
}
