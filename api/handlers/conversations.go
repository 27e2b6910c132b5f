package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/internal/service/conversation"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

type ConversationHandler struct {
	service *conversation.Service
	logger  logger.Logger
}

func NewConversationHandler(service *conversation.Service, log logger.Logger) *ConversationHandler {
	return &ConversationHandler{service: service, logger: log}
}

func (h *ConversationHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	start := dateQuery(c, "startDate")
	end := dateQuery(c, "endDate")

	convs, pagination, err := h.service.List(c.Request.Context(), page, limit, start, end)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": convs,
		"pagination":    pagination,
	})
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	msgs, err := h.service.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func dateQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &parsed
}
