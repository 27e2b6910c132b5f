package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/service/intent"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

type IntentHandler struct {
	service *intent.Service
	logger  logger.Logger
}

func NewIntentHandler(service *intent.Service, log logger.Logger) *IntentHandler {
	return &IntentHandler{service: service, logger: log}
}

func (h *IntentHandler) Create(c *gin.Context) {
	var req models.Intent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation",
			Message: "invalid request body",
		})
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *IntentHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	intents, pagination, err := h.service.List(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intents":    intents,
		"pagination": pagination,
	})
}

func (h *IntentHandler) Get(c *gin.Context) {
	found, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *IntentHandler) Update(c *gin.Context) {
	var req models.Intent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation",
			Message: "invalid request body",
		})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *IntentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IntentHandler) Sync(c *gin.Context) {
	count, err := h.service.Sync(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Intents ready for training",
		"count":   count,
	})
}
