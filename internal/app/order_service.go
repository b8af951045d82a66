package app

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// OrderService lists orders and lets admins move them through their lifecycle.
type OrderService struct {
	api  domain.OrderAPI
	sess *SessionService
}

// NewOrderService creates an order service.
func NewOrderService(api domain.OrderAPI, sess *SessionService) *OrderService {
	return &OrderService{api: api, sess: sess}
}

// MyOrders returns the logged-in user's orders.
func (s *OrderService) MyOrders(ctx context.Context) ([]domain.Order, error) {
	if _, err := s.sess.RequireUser(); err != nil {
		return nil, err
	}
	return s.api.MyOrders(ctx)
}

// AllOrders returns every order.
func (s *OrderService) AllOrders(ctx context.Context) ([]domain.Order, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.api.AllOrders(ctx)
}

// UpdateStatus sets the status of order id.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.api.UpdateOrderStatus(ctx, id, status)
}
