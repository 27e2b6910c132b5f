package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/api/handlers"
	"github.com/sofrecom-tn/chatbot-admin/api/middleware"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/auth"
)

// SetupRoutes wires all API routes. Everything except auth and the health
// probe sits behind the JWT middleware.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, authService *auth.Service) {
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", middleware.Auth(authService), h.Auth.Me)
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(authService))

	docs := protected.Group("/documents")
	{
		docs.GET("", h.Document.List)
		docs.POST("/upload", h.Document.Upload)
		docs.POST("/search", h.Document.Search)
		docs.GET("/:id", h.Document.Get)
		docs.DELETE("/:id", h.Document.Delete)
		docs.POST("/:id/reindex", h.Document.Reindex)
		docs.GET("/:id/status", h.Document.Status)
	}

	intents := protected.Group("/intents")
	{
		intents.GET("", h.Intent.List)
		intents.POST("", h.Intent.Create)
		intents.POST("/sync", h.Intent.Sync)
		intents.GET("/:id", h.Intent.Get)
		intents.PUT("/:id", h.Intent.Update)
		intents.DELETE("/:id", h.Intent.Delete)
	}

	convs := protected.Group("/conversations")
	{
		convs.GET("", h.Conversation.List)
		convs.GET("/:id", h.Conversation.Get)
		convs.GET("/:id/messages", h.Conversation.Messages)
		convs.DELETE("/:id", h.Conversation.Delete)
	}

	stats := protected.Group("/analytics")
	{
		stats.GET("/dashboard", h.Analytics.Dashboard)
		stats.GET("/intents", h.Analytics.Intents)
		stats.GET("/conversations", h.Analytics.Conversations)
		stats.GET("/rag", h.Analytics.RAG)
	}
}
