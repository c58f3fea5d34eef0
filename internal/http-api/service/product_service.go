package service

import (
	"context"
	"errors"

	"storefront/internal/http-api/models"
	"storefront/internal/http-api/repository"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type ProductService interface {
	List(ctx context.Context, page, pageSize int) ([]models.Product, int64, error)
	ListByCategory(ctx context.Context, categoryID string, page, pageSize int) ([]models.Product, int64, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

type productService struct {
	repo  repository.ProductRepository
	cache *repository.ProductCache
}

func NewProductService(repo repository.ProductRepository, cache *repository.ProductCache) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) List(ctx context.Context, page, pageSize int) ([]models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if products, total, ok := s.cache.GetPage(ctx, page, pageSize); ok {
		return products, total, nil
	}

	products, total, err := s.repo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	s.cache.SetPage(ctx, page, pageSize, products, total)
	return products, total, nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID string, page, pageSize int) ([]models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.GetByCategory(ctx, categoryID, page, pageSize)
}

func (s *productService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, p *models.Product) error {
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *productService) Update(ctx context.Context, p *models.Product) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}
