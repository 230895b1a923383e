package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"usage-sync-backend/config"
	"usage-sync-backend/internal/model"
)

const defaultListLimit = 100

func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit <= 0 || limit > 1000 {
		return defaultListLimit
	}
	return limit
}

// GetRecords handles GET /api/records: the device's most recently uploaded
// usage records.
func GetRecords(cfg *config.Config, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []model.UsageRecord
		err := db.
			Where("device_id = ?", cfg.Sync.DeviceID).
			Order("timestamp DESC, usage_time DESC").
			Limit(listLimit(c)).
			Find(&records).Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usage records"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// GetSummaries handles GET /api/summaries: the device's daily summary rows,
// newest first. A date can repeat: each sync cycle appends its own row.
func GetSummaries(cfg *config.Config, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var summaries []model.DailyUsageSummary
		err := db.
			Where("device_id = ?", cfg.Sync.DeviceID).
			Order("date DESC, created_at DESC").
			Limit(listLimit(c)).
			Find(&summaries).Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve daily summaries"})
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}
