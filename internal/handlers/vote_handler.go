package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/pulsepoll-api/internal/domain/vote"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/response"
	"github.com/gravadigital/pulsepoll-api/internal/services"
)

// VoteHandler serves vote submission and result queries
type VoteHandler struct {
	service *services.Ingestion
	log     *log.Logger
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(service *services.Ingestion) *VoteHandler {
	return &VoteHandler{
		service: service,
		log:     logger.Handler("vote"),
	}
}

// SubmitVoteRequest is the submit payload. Value accepts either a plain
// string or an array of option labels for multi-select polls.
type SubmitVoteRequest struct {
	PollID  string     `json:"poll_id" binding:"required"`
	VoterID string     `json:"voter_id"`
	Value   vote.Value `json:"value"`
}

// SubmitVote handles POST /api/votes
func (h *VoteHandler) SubmitVote(c *gin.Context) {
	var req SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.service.SubmitVote(c.Request.Context(), req.PollID, req.VoterID, req.Value)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			h.log.Warn("vote rejected", "poll_id", req.PollID, "reason", vErr.Reason)
			response.BadRequestError(c, vErr.Reason)
			return
		}

		h.log.Error("vote submission failed", "poll_id", req.PollID, "error", err)
		response.InternalServerError(c, "Failed to store vote")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "Vote recorded", result)
}

// GetResults handles GET /api/polls/:poll_id/results
func (h *VoteHandler) GetResults(c *gin.Context) {
	pollID := c.Param("poll_id")

	result, err := h.service.Results(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			response.NotFoundError(c, "Poll not found")
			return
		}

		h.log.Error("results query failed", "poll_id", pollID, "error", err)
		response.InternalServerError(c, "Failed to compute results")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", result)
}
