package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yusuke-arai/chat-sessions/internal/httpapi/handlers"
	"github.com/yusuke-arai/chat-sessions/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "route not found",
			},
		})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "method not allowed",
			},
		})
	})

	r.GET("/health", h.Health)

	r.POST("/chat", h.Chat)

	r.POST("/sessions", h.CreateSession)
	r.GET("/sessions/:id", h.GetSession)
	r.DELETE("/sessions/:id", h.DeleteSession)
	r.POST("/sessions/:id/chat", h.SessionChat)
	r.POST("/sessions/:id/chat/async", h.SessionChatAsync)

	r.GET("/jobs/:id", h.GetJob)

	return r
}
