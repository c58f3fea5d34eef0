package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/http-api/models"
	"storefront/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotOrderOwner     = errors.New("order belongs to another user")
)

// allowed status transitions; everything else is rejected
var orderTransitions = map[string][]string{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
}

type OrderLine struct {
	ProductID string
	Quantity  int
}

type OrderService interface {
	Create(ctx context.Context, userID string, lines []OrderLine) (*models.Order, error)
	Get(ctx context.Context, userID, orderID string, isAdmin bool) (*models.Order, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository) OrderService {
	return &orderService{orders: orders, products: products}
}

// Create builds an order from line items, snapshotting unit prices and
// decrementing stock inside one transaction so an out-of-stock line rolls
// the whole order back.
func (s *orderService) Create(ctx context.Context, userID string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
	}

	err := s.orders.Transaction(ctx, func(tx *gorm.DB) error {
		for _, line := range lines {
			if line.Quantity < 1 {
				return fmt.Errorf("%w: quantity must be positive", ErrEmptyOrder)
			}
			product, err := s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			ok, err := s.orders.DecrementStock(ctx, tx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID:      product.ID,
				ProductName:    product.Name,
				UnitPriceCents: product.PriceCents,
				Quantity:       line.Quantity,
			})
			order.TotalCents += product.PriceCents * int64(line.Quantity)
			order.Currency = product.Currency
		}

		return s.orders.CreateWithItems(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) Get(ctx context.Context, userID, orderID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.orders.GetByUser(ctx, userID, page, pageSize)
}

// UpdateStatus applies an admin-driven status change, enforcing the
// pending -> paid -> shipped / cancelled state machine.
func (s *orderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}
