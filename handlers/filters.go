package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"activitylog/store"

	"github.com/gin-gonic/gin"
)

func GetFilters(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Filters())
	}
}

// ReplaceFilters decodes the body over the current state, so omitted fields
// keep their values.
func ReplaceFilters(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := s.Filters()
		if err := c.ShouldBindJSON(&next); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !next.TimeRange.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown time range %q", next.TimeRange)})
			return
		}

		s.SetFilters(next)
		c.JSON(http.StatusOK, s.Filters())
	}
}

// SetFilter updates a single field. The body is the bare JSON value.
func SetFilter(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil || !json.Valid(body) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON value"})
			return
		}

		if err := s.SetFilter(c.Param("key"), body); err != nil {
			var keyErr *store.FilterKeyError
			if errors.As(err, &keyErr) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s.Filters())
	}
}

func ResetFilters(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.ResetFilters()
		c.JSON(http.StatusOK, s.Filters())
	}
}

func ToggleAutoScroll(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"auto_scroll": s.ToggleAutoScroll()})
	}
}
