package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/analytics"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/auth"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/conversation"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/document"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/intent"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

type Handlers struct {
	Document     *DocumentHandler
	Intent       *IntentHandler
	Conversation *ConversationHandler
	Analytics    *AnalyticsHandler
	Auth         *AuthHandler
}

func NewHandlers(
	documents *document.Service,
	intents *intent.Service,
	conversations *conversation.Service,
	analyticsService *analytics.Service,
	authService *auth.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Document:     NewDocumentHandler(documents, log),
		Intent:       NewIntentHandler(intents, log),
		Conversation: NewConversationHandler(conversations, log),
		Analytics:    NewAnalyticsHandler(analyticsService, log),
		Auth:         NewAuthHandler(authService, log),
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleError translates a service error into an HTTP response. Unknown
// errors become 500s with their detail logged, not leaked.
func handleError(c *gin.Context, log logger.Logger, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindExtraction:
		status = http.StatusUnprocessableEntity
	case apperr.KindIndexing:
		status = http.StatusBadGateway
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed",
			logger.String("path", c.Request.URL.Path),
			logger.Error(err),
		)
		message = "internal server error"
	}

	c.JSON(status, ErrorResponse{Error: string(kind), Message: message})
}

func pageParams(c *gin.Context) (int, int) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
