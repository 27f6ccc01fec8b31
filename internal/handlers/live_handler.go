package handlers

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/pulsepoll-api/internal/broadcast"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/response"
	"github.com/gravadigital/pulsepoll-api/internal/services"
)

// LiveHandler serves the Server-Sent Events stream that keeps dashboards
// in sync with the latest aggregates.
type LiveHandler struct {
	service *services.Ingestion
	hub     *broadcast.Hub
	log     *log.Logger
}

// NewLiveHandler creates a new live stream handler
func NewLiveHandler(service *services.Ingestion, hub *broadcast.Hub) *LiveHandler {
	return &LiveHandler{
		service: service,
		hub:     hub,
		log:     logger.Handler("live"),
	}
}

// Stream handles GET /api/live. The connection first receives the current
// aggregate of every poll, then pushed events until the client goes away.
func (h *LiveHandler) Stream(c *gin.Context) {
	// Snapshot before subscribing would lose events published in between;
	// subscribe first, then send the snapshot.
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	snapshots, err := h.service.AllResults(c.Request.Context())
	if err != nil {
		h.log.Error("failed to load initial snapshot", "error", err)
		response.InternalServerError(c, "Failed to load current results")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for _, result := range snapshots {
		event := broadcast.VoteUpdate(result)
		c.SSEvent(string(event.Kind), event)
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
