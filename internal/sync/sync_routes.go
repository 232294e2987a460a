package sync

import (
	"time"

	"go-punchsync/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	syncGroup := r.Group("/sync")
	{
		// one trigger per 30s per caller, sync runs are full source scans
		syncGroup.POST("", middleware.RateLimitByIP(rate.Every(30*time.Second), 2), h.Trigger)
		syncGroup.GET("/watermarks", h.Watermarks)
	}
}
