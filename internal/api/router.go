package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"staffops-backend/config"
	"staffops-backend/internal/clock"
	"staffops-backend/internal/location"
	"staffops-backend/internal/mw"
	"staffops-backend/internal/schedule"
	"staffops-backend/internal/store"
)

// NewRouter creates and configures a new Gin router over the engine
// services.
func NewRouter(s store.Store, cl *clock.Ledger, eng *schedule.Engine, capture location.Adapter, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, cl, eng, capture, cfg.Attendance)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/attendance/clock-in", handler.PostClockIn)
		api.POST("/attendance/clock-out", handler.PostClockOut)
		api.GET("/attendance/timecard", caching, handler.GetTimecard)

		api.POST("/schedules", handler.PostSchedule)
		api.POST("/schedules/bulk", handler.PostSchedulesBulk)
		api.GET("/schedules", caching, handler.GetSchedules)
		api.POST("/schedules/:id/confirm", handler.PostConfirm)
		api.POST("/schedules/:id/request-cancellation", handler.PostRequestCancellation)
		api.POST("/schedules/:id/approve-cancellation", handler.PostApproveCancellation)
		api.POST("/schedules/:id/force-cancel", handler.PostForceCancel)
		api.POST("/schedules/:id/complete", handler.PostComplete)
		api.DELETE("/schedules/:id", handler.DeleteSchedule)
		api.GET("/schedules/:id/notifications", handler.GetNotifications)
	}

	return r
}
