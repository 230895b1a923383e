package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"usage-sync-backend/internal/aggregate"
	"usage-sync-backend/internal/timerange"
)

// usageResponse is the live usage view over one window.
type usageResponse struct {
	WindowStart     int64             `json:"window_start"`
	WindowEnd       int64             `json:"window_end"`
	TotalScreenTime int64             `json:"total_screen_time"`
	TotalFormatted  string            `json:"total_formatted"`
	Entries         []aggregate.Entry `json:"entries"`
}

// GetUsage handles GET /api/usage. Preset ranges use the interval-statistics
// path; custom ranges use the event path for precise tracking, mirroring the
// on-device view.
func (h *Handler) GetUsage(c *gin.Context) {
	rangeName := c.DefaultQuery("range", timerange.PresetDay)
	window, err := timerange.Resolve(rangeName, c.Query("start"), c.Query("end"), time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	resolve := func(pkg string) (string, error) {
		return h.source.ResolveDisplayName(ctx, pkg)
	}

	var entries []aggregate.Entry
	if rangeName == timerange.PresetCustom {
		events, err := h.source.QueryTransitionEvents(ctx, window.Start, window.End)
		if err != nil {
			log.Printf("Error querying transition events: %v", err)
			events = nil
		}
		entries = aggregate.FromEvents(events, resolve)
	} else {
		stats, err := h.source.QueryIntervalStats(ctx, window.Start, window.End)
		if err != nil {
			log.Printf("Error querying interval stats: %v", err)
			stats = nil
		}
		entries = aggregate.FromStats(stats, resolve)
	}

	var total int64
	for _, entry := range entries {
		total += entry.UsageTime
	}

	c.JSON(http.StatusOK, usageResponse{
		WindowStart:     window.Start,
		WindowEnd:       window.End,
		TotalScreenTime: total,
		TotalFormatted:  timerange.FormatDuration(total),
		Entries:         entries,
	})
}
