package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/upsell"
	"go.uber.org/zap"
)

// FetcherFor picks the upsell fetcher for a request, e.g. one bound to its locale.
type FetcherFor func(c *gin.Context) upsell.Fetcher

// UpsellProvider mounts one upsell source per request and publishes it on the request
// context. The source is unmounted once the handler chain returns.
func UpsellProvider(fetcherFor FetcherFor, log *zap.Logger, opts ...upsell.Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		src := upsell.Mount(ctx, fetcherFor(c), log, opts...)
		defer src.Unmount()

		c.Request = c.Request.WithContext(upsell.NewContext(ctx, src))
		c.Next()
	}
}
