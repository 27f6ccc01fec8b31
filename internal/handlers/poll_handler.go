package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/pulsepoll-api/internal/response"
	"github.com/gravadigital/pulsepoll-api/internal/services"
)

// PollHandler serves the static poll catalog
type PollHandler struct {
	service *services.Ingestion
}

// NewPollHandler creates a new poll handler
func NewPollHandler(service *services.Ingestion) *PollHandler {
	return &PollHandler{service: service}
}

// GetCatalog handles GET /api/polls
func (h *PollHandler) GetCatalog(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "", h.service.Polls())
}
