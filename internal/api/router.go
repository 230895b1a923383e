package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"usage-sync-backend/config"
	"usage-sync-backend/internal/mw"
	"usage-sync-backend/internal/source"
	"usage-sync-backend/internal/store"
	syncsvc "usage-sync-backend/internal/sync"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, adapter source.Adapter, sync *syncsvc.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(cfg, s, adapter, sync, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Live on-device usage view, independent of the sync path.
		api.GET("/usage", handler.GetUsage)

		// Previously uploaded data.
		api.GET("/records", caching, GetRecords(cfg, db))
		api.GET("/summaries", caching, GetSummaries(cfg, db))

		// Manual sync trigger.
		api.POST("/sync", handler.TriggerSync)

		// Push subscription management.
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
