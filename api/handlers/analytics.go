package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/internal/service/analytics"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

type AnalyticsHandler struct {
	service *analytics.Service
	logger  logger.Logger
}

func NewAnalyticsHandler(service *analytics.Service, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: log}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context(), intQuery(c, "period", 0))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) Intents(c *gin.Context) {
	stats, err := h.service.TopIntents(c.Request.Context(), intQuery(c, "period", 0))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intents": stats})
}

func (h *AnalyticsHandler) Conversations(c *gin.Context) {
	trend, err := h.service.ConversationTrend(c.Request.Context(), intQuery(c, "period", 0))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily": trend})
}

func (h *AnalyticsHandler) RAG(c *gin.Context) {
	stats, err := h.service.RAG(c.Request.Context(), intQuery(c, "period", 0))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
