package service

import (
	"context"

	"storefront/internal/http-api/models"
	"storefront/internal/http-api/repository"
)

type ContactService interface {
	Submit(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, page, pageSize int) ([]models.ContactMessage, int64, error)
}

type contactService struct {
	repo repository.ContactRepository
}

func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactService{repo: repo}
}

func (s *contactService) Submit(ctx context.Context, msg *models.ContactMessage) error {
	return s.repo.Create(ctx, msg)
}

func (s *contactService) List(ctx context.Context, page, pageSize int) ([]models.ContactMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.GetAll(ctx, page, pageSize)
}
