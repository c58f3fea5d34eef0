package handler

import (
	"errors"
	"net/http"

	"storefront/internal/http-api/dto"
	"storefront/internal/http-api/models"
	"storefront/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	orders   service.OrderService
	payments service.PaymentProvider
}

func NewPaymentHandler(orders service.OrderService, payments service.PaymentProvider) *PaymentHandler {
	return &PaymentHandler{orders: orders, payments: payments}
}

// CreateIntent creates a payment intent for one of the caller's pending orders.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Get(c.Request.Context(), currentUserID(c), req.OrderID, false)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.Status != models.OrderStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), order.TotalCents, order.Currency, map[string]string{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	if err != nil {
		if errors.Is(err, service.ErrPaymentProvider) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, dto.PaymentIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  intent.AmountCents,
		Currency:     intent.Currency,
	})
}
