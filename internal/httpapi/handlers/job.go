package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yusuke-arai/chat-sessions/internal/apperr"
)

// POST /sessions/:id/chat/async
// Enqueues the exchange and returns a job id to poll. Nothing is persisted
// to the session until the worker's provider call succeeds.
func (h *Handler) SessionChatAsync(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req sessionChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid json"))
		return
	}

	if h.Rabbit == nil {
		fail(c, apperr.Store(errors.New("job queue unavailable")))
		return
	}

	job, err := h.ChatSvc.CreateJob(c.Request.Context(), id, req.Message)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
		fail(c, apperr.Store(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

// GET /jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		fail(c, apperr.Validation("job id required"))
		return
	}

	job, err := h.ChatSvc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}
