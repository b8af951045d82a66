// Package app holds the application services and business logic.
package app

import "errors"

var (
	// ErrNotAuthenticated indicates that the operation needs a logged-in session.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrForbidden indicates that the session lacks the admin role.
	ErrForbidden = errors.New("admin role required")
	// ErrEmptyCart indicates a checkout with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidStatus indicates an unknown order status.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidInput indicates a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
