package app

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

// DeliveryDetails is the checkout form.
type DeliveryDetails struct {
	Phone   string         `json:"phone"`
	Address domain.Address `json:"address"`
}

// Receipt summarises a completed checkout.
type Receipt struct {
	Items           []domain.LineItem `json:"items"`
	Total           float64           `json:"total"`
	Count           int               `json:"count"`
	Phone           string            `json:"phone"`
	DeliveryAddress domain.Address    `json:"deliveryAddress"`
}

// CheckoutService turns the cart into a confirmed delivery.
type CheckoutService struct {
	cart *CartService
	sess *SessionService
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(cart *CartService, sess *SessionService) *CheckoutService {
	return &CheckoutService{cart: cart, sess: sess}
}

// Checkout records the delivery details on the cached user and empties the
// cart. The receipt reflects the cart as it was before clearing.
func (s *CheckoutService) Checkout(ctx context.Context, d DeliveryDetails) (*Receipt, error) {
	if _, err := s.sess.RequireUser(); err != nil {
		return nil, err
	}
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address.Street = strings.TrimSpace(d.Address.Street)
	d.Address.City = strings.TrimSpace(d.Address.City)
	if d.Phone == "" || d.Address.Street == "" || d.Address.City == "" {
		return nil, fmt.Errorf("%w: phone, street and city are required", ErrInvalidInput)
	}

	if _, err := s.sess.AmendUser(ctx, func(u *domain.User) {
		u.Phone = d.Phone
		a := d.Address
		u.Address = &a
	}); err != nil {
		return nil, err
	}
	if err := s.cart.Clear(ctx); err != nil {
		return nil, err
	}

	return &Receipt{
		Items:           items,
		Total:           Total(items),
		Count:           Count(items),
		Phone:           d.Phone,
		DeliveryAddress: d.Address,
	}, nil
}
