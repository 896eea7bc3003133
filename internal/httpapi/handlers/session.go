package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yusuke-arai/chat-sessions/internal/apperr"
	"github.com/yusuke-arai/chat-sessions/internal/chat"
)

type createSessionReq struct {
	SystemPrompt *string `json:"system_prompt"`
}

type sessionChatReq struct {
	Message string `json:"message"`
}

func sessionIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, apperr.Validation("invalid session id"))
		return "", false
	}
	return id, true
}

// POST /sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionReq
	// an empty body means no system prompt; anything else must parse, since
	// the prompt cannot be set after creation
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, apperr.Validation("invalid json"))
		return
	}

	sess, err := h.ChatSvc.CreateSession(c.Request.Context(), req.SystemPrompt)
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
	}
	if sess.SystemPrompt != nil {
		resp["system_prompt"] = *sess.SystemPrompt
	}
	c.JSON(http.StatusOK, resp)
}

// GET /sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	sess, msgs, err := h.ChatSvc.GetSessionWithMessages(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  sess,
		"messages": msgs,
	})
}

// DELETE /sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	if err := h.ChatSvc.DeleteSession(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /sessions/:id/chat
func (h *Handler) SessionChat(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req sessionChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid json"))
		return
	}

	res, err := h.ChatSvc.SessionChat(c.Request.Context(), id, req.Message)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":      res.Response,
		"model":         res.Model,
		"session_id":    res.SessionID,
		"message_count": res.MessageCount,
	})
}
