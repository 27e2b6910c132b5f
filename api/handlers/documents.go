package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sofrecom-tn/chatbot-admin/internal/service/document"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

type DocumentHandler struct {
	service *document.Service
	logger  logger.Logger
}

func NewDocumentHandler(service *document.Service, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{service: service, logger: log}
}

// Upload accepts a multipart file and schedules its ingestion. The response
// carries the new record in processing state.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation",
			Message: "multipart field \"file\" is required",
		})
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), file, header)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded, ingestion in progress",
		"document": doc,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	docs, pagination, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":  docs,
		"pagination": pagination,
	})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) Reindex(c *gin.Context) {
	doc, err := h.service.Reindex(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Reindex scheduled",
		"document": doc,
	})
}

// Status reports ingestion progress for polling clients.
func (h *DocumentHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *DocumentHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation",
			Message: "invalid request body",
		})
		return
	}

	results, err := h.service.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
	})
}
