package dto

import "storefront/internal/http-api/models"

// OrderLineRequest: one line item in a new order
type OrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest: payload for creating an order
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderListResponse: paginated order listing for the current user
type OrderListResponse struct {
	Orders   []models.Order `json:"orders"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// UpdateOrderStatusRequest: admin payload for moving an order through its lifecycle
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=paid shipped cancelled"`
}
