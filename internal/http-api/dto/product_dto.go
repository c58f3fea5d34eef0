package dto

import "storefront/internal/http-api/models"

// CreateProductRequest: payload for creating a product (admin only)
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"price_cents" binding:"required,gt=0"`
	Currency    string  `json:"currency"`
	Stock       int     `json:"stock" binding:"gte=0"`
	ImageURL    string  `json:"image_url"`
	CategoryID  *string `json:"category_id"`
}

// UpdateProductRequest: payload for updating a product (admin only)
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	ImageURL    *string `json:"image_url"`
	CategoryID  *string `json:"category_id"`
}

// ProductListResponse: paginated product listing
type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// CreateCategoryRequest: payload for creating a category (admin only)
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
}
