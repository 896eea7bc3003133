package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yusuke-arai/chat-sessions/internal/apperr"
)

type chatReq struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt"`
}

// Chat is the history-less one-shot endpoint: POST /chat.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid json"))
		return
	}

	res, err := h.ChatSvc.Chat(c.Request.Context(), req.Message, req.SystemPrompt)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": res.Response,
		"model":    res.Model,
		"usage": gin.H{
			"prompt_tokens":     res.PromptTokens,
			"completion_tokens": res.CompletionTokens,
			"total_tokens":      res.TotalTokens,
		},
	})
}
