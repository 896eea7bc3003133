package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yusuke-arai/chat-sessions/internal/apperr"
	"github.com/yusuke-arai/chat-sessions/internal/chat"
	"github.com/yusuke-arai/chat-sessions/internal/store/rabbitmq"
)

const Version = "0.3.0"

type Handler struct {
	ChatSvc *chat.Service
	// Rabbit may be nil; async chat endpoints then report a store failure.
	Rabbit *rabbitmq.Publisher
}

func NewHandler(svc *chat.Service, pub *rabbitmq.Publisher) *Handler {
	return &Handler{ChatSvc: svc, Rabbit: pub}
}

// fail renders the taxonomy error shape. The internal cause is logged here,
// at the translation boundary, and never reaches the client.
func fail(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Store(err)
	}
	if cause := e.Unwrap(); cause != nil {
		log.Printf("request failed method=%s path=%s code=%s err=%v",
			c.Request.Method, c.FullPath(), e.Code(), cause)
	}
	c.JSON(e.HTTPStatus(), gin.H{
		"error": gin.H{
			"code":    e.Code(),
			"message": e.UserMessage(),
		},
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": Version,
	})
}
