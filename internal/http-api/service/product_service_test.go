package service

import (
	"context"
	"testing"

	"storefront/internal/http-api/models"
	"storefront/internal/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// nil redis client: the cache degrades to a pass-through
func passthroughCache() *repository.ProductCache {
	return repository.NewProductCache(nil, 0)
}

func TestProductList_ClampsPagination(t *testing.T) {
	mockProducts := new(MockProductRepository)
	productService := NewProductService(mockProducts, passthroughCache())

	mockProducts.On("GetAll", mock.Anything, 1, 20).
		Return([]models.Product{{ID: "prod-1", Name: "Widget"}}, int64(1), nil)

	products, total, err := productService.List(context.Background(), -3, 500)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, products, 1)
	mockProducts.AssertExpectations(t)
}

func TestProductGet_NotFound(t *testing.T) {
	mockProducts := new(MockProductRepository)
	productService := NewProductService(mockProducts, passthroughCache())

	mockProducts.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	product, err := productService.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
}
