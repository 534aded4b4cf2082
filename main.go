package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/cache"
	"github.com/yashrajoria/storefront/clients"
	"github.com/yashrajoria/storefront/config"
	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/database"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/middleware"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/routes"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/upsell"
	"github.com/yashrajoria/storefront/views"
	"go.uber.org/zap"
)

const serviceName = "storefront"

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// AWS clients are optional locally; every consumer accepts nil.
	var (
		snsClient awspkg.SNSPublisher
		recorder  awspkg.MetricsRecorder
		logSink   *awspkg.CloudWatchLogsClient
	)
	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)
	if awsErr == nil {
		if cfg.CartEventsTopicARN != "" {
			snsClient = awspkg.NewSNSClient(awsCfg)
		}
		recorder = awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
		if cfg.CloudWatchEnabled {
			if logSink, err = awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName); err != nil {
				log.Printf("CloudWatch Logs unavailable: %v", err)
				logSink = nil
			}
		}
	}

	if logSink != nil {
		logger.InitializeWithWriter(cfg.Env, logSink)
	} else {
		logger.Initialize(cfg.Env)
	}
	defer logger.Log.Sync() //nolint:errcheck
	if awsErr != nil {
		logger.Log.Warn("AWS config unavailable, SNS and CloudWatch disabled", zap.Error(awsErr))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	storefront := clients.NewStorefrontClient(clients.StorefrontConfig{
		Endpoint:   cfg.StorefrontEndpoint,
		Domain:     cfg.StoreDomain,
		APIVersion: cfg.StorefrontVersion,
		Token:      cfg.StorefrontToken,
		Timeout:    cfg.RequestTimeout,
	})
	defer storefront.Close() //nolint:errcheck

	var upsellCache services.UpsellCache
	if cfg.UpsellCacheEnabled() {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Warn("Upsell cache disabled", zap.Error(err))
		} else {
			defer rdb.Close() //nolint:errcheck
			mgr := cache.NewManager(rdb, cfg.UpsellCacheTTL, logger.Log).WithRecorder(recorder)
			// Lists cached by an earlier release may not match this release's query.
			if err := mgr.Invalidate(ctx); err != nil {
				logger.Log.Warn("Upsell cache invalidation failed", zap.Error(err))
			}
			upsellCache = mgr
			logger.Log.Info("Upsell cache enabled", zap.Duration("ttl", cfg.UpsellCacheTTL))
		}
	}

	upsellService := services.NewUpsellService(storefront, upsellCache, logger.Log)
	cartService := services.NewCartService(storefront, snsClient, cfg.CartEventsTopicARN, recorder, logger.Log)

	cartView, err := views.NewCartView(views.Config{
		FreeShippingGoal: cfg.FreeShippingGoal,
		CurrencyLabel:    cfg.CurrencyLabel,
	})
	if err != nil {
		logger.Log.Fatal("Failed to build cart view", zap.Error(err))
	}

	upsellClient := clients.NewUpsellClient(cfg.PublicURL, cfg.RequestTimeout)
	defer upsellClient.Close() //nolint:errcheck
	upsellProvider := middleware.UpsellProvider(func(c *gin.Context) upsell.Fetcher {
		return upsellClient.WithLocale(c.Param("locale")).WithClientIP(c.ClientIP())
	}, logger.Log, upsell.WithRecorder(recorder))

	r := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		// The upsell self-call arrives over loopback and carries the shopper's IP.
		if err := r.SetTrustedProxies(append(cfg.TrustedProxies, "127.0.0.1", "::1")); err != nil {
			logger.Log.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
		}
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger.Log),
		middleware.MetricsMiddleware(recorder, serviceName),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute),
		apperrors.ErrorMiddleware(),
	)

	routes.RegisterRoutes(r, routes.Handlers{
		Health:         controllers.NewHealthController(),
		Upsell:         controllers.NewUpsellController(upsellService),
		Cart:           controllers.NewCartController(cartService, cartView, cfg.RenderWait, cfg.IsProduction()),
		UpsellProvider: upsellProvider,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Log.Info("Storefront service started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	<-quit
	logger.Log.Info("Shutting down storefront service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Server exited cleanly")
}
