package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"promo/internal/handler"
	"promo/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CouponHandler *handler.CouponHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		coupons := v1.Group("/coupons")
		{
			coupons.POST("", deps.CouponHandler.CreateCoupon)
			coupons.GET("/available", deps.CouponHandler.ListAvailable)
			coupons.POST("/validate", deps.CouponHandler.ValidateCoupon)
			coupons.POST("/redeem", deps.CouponHandler.RedeemCoupon)
			coupons.GET("/:code", deps.CouponHandler.GetCoupon)
		}
	}

	return router
}
