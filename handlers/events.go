package handlers

import (
	"net/http"
	"time"

	"activitylog/mapper"
	"activitylog/models"
	"activitylog/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

func HealthCheck(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"stats":  s.Stats(),
		})
	}
}

// GetEvents returns one page of the filtered events, oldest first.
func GetEvents(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params models.EventsQuery
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		params.Limit = validateLimit(params.Limit, defaultLimit, maxLimit)
		params.Offset = validateOffset(params.Offset)

		filtered := s.FilteredEvents()
		total := len(filtered)
		page := window(filtered, params.Offset, params.Limit)

		log.Debugf("GetEvents: duration=%v total=%d returned=%d", time.Since(start), total, len(page))

		c.JSON(http.StatusOK, models.EventsResponse{
			Events:  page,
			Total:   total,
			Limit:   params.Limit,
			Offset:  params.Offset,
			HasMore: params.Offset < total-params.Limit,
		})
	}
}

// IngestEvents maps raw stream messages exactly as the live transport does.
func IngestEvents(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raws []models.RawEvent
		if err := c.ShouldBindJSON(&raws); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		events := make([]models.LogEvent, 0, len(raws))
		stored := 0
		for _, raw := range raws {
			e, ok := s.Ingest(mapper.Raw{Type: raw.Type, Data: raw.Data, ID: raw.ID})
			if ok {
				stored++
			}
			events = append(events, e)
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":    "events stored",
			"count":      stored,
			"duplicates": len(raws) - stored,
			"events":     events,
		})
	}
}

func ClearEvents(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.ClearEvents()
		c.Status(http.StatusNoContent)
	}
}

func validateLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func validateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func window(events []models.LogEvent, offset, limit int) []models.LogEvent {
	if offset >= len(events) {
		return []models.LogEvent{}
	}
	end := min(offset+limit, len(events))
	return events[offset:end]
}
