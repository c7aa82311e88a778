package handlers

import (
	"activitylog/middleware"
	"activitylog/store"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts the control API. /health stays open when token is set.
func NewRouter(s *store.Store, token string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/health", HealthCheck(s))

	api := r.Group("/", middleware.TokenRequired(token))
	api.GET("/events", GetEvents(s))
	api.POST("/events", IngestEvents(s))
	api.DELETE("/events", ClearEvents(s))
	api.GET("/events/stream", StreamEvents(s))

	api.GET("/filters", GetFilters(s))
	api.PUT("/filters", ReplaceFilters(s))
	api.PATCH("/filters/:key", SetFilter(s))
	api.POST("/filters/reset", ResetFilters(s))
	api.POST("/autoscroll/toggle", ToggleAutoScroll(s))

	return r
}
