package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerSync handles POST /api/sync: run one immediate sync cycle. A cycle
// already in flight yields 409; the scheduler contract allows at most one
// concurrent cycle per device.
func (h *Handler) TriggerSync(c *gin.Context) {
	outcome, ok := h.sync.TrySyncOnce(c.Request.Context())
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "a sync cycle is already running"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}
