package handler

import (
	"net/http"

	"storefront/internal/http-api/dto"
	"storefront/internal/http-api/models"
	"storefront/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contact service.ContactService
}

func NewContactHandler(contact service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := h.contact.Submit(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit message"})
		return
	}

	c.JSON(http.StatusCreated, dto.ContactResponse{Message: "message received"})
}

// ListMessages is the admin view of submitted contact messages.
func (h *ContactHandler) ListMessages(c *gin.Context) {
	page, pageSize := pageParams(c)

	messages, total, err := h.contact.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":  messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
