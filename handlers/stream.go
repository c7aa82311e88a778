package handlers

import (
	"io"
	"time"

	"activitylog/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// KeepaliveInterval matches the backend's own stream keepalive.
var KeepaliveInterval = 15 * time.Second

// StreamEvents re-publishes newly added events that pass the current filter
// as server-sent events. Filter changes and clears are forwarded so a client
// knows to refetch.
func StreamEvents(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := s.Subscribe()
		defer s.Unsubscribe(sub)

		keepalive := time.NewTicker(KeepaliveInterval)
		defer keepalive.Stop()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		c.SSEvent("connected", gin.H{
			"filters": s.Filters(),
			"stats":   s.Stats(),
		})
		c.Writer.Flush()

		log.WithField("remote", c.ClientIP()).Debug("stream subscriber connected")
		defer log.WithField("remote", c.ClientIP()).Debug("stream subscriber disconnected")

		ctx := c.Request.Context()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case change, ok := <-sub:
				if !ok {
					return false
				}
				switch change.Kind {
				case store.EventAdded:
					if change.Event != nil && s.Visible(*change.Event) {
						c.SSEvent("log", change.Event)
					}
				case store.EventsCleared:
					c.SSEvent("cleared", gin.H{})
				case store.FiltersChanged:
					c.SSEvent("filters", s.Filters())
				}
				return true
			case <-keepalive.C:
				_, err := io.WriteString(w, ": keepalive\n\n")
				return err == nil
			}
		})
	}
}
