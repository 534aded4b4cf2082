package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/metrics"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
)

// MetricsMiddleware records every request in Prometheus and, when enabled, CloudWatch.
func MetricsMiddleware(recorder awspkg.MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, statusCodeToRange(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(duration.Seconds())

		if recorder == nil || !recorder.IsEnabled() {
			return
		}

		dimensions := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  statusCodeToRange(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = recorder.RecordCount(ctx, awspkg.MetricHTTPRequests, dimensions)
			_ = recorder.RecordLatency(ctx, awspkg.MetricHTTPLatency, duration, dimensions)
			if status >= 400 {
				_ = recorder.RecordCount(ctx, awspkg.MetricHTTPErrors, dimensions)
				if status >= 500 {
					_ = recorder.RecordCount(ctx, awspkg.MetricHTTP5xx, dimensions)
				} else {
					_ = recorder.RecordCount(ctx, awspkg.MetricHTTP4xx, dimensions)
				}
			}
		}()
	}
}

func statusCodeToRange(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}
