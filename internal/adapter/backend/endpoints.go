package backend

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

var (
	_ domain.AuthAPI    = (*Client)(nil)
	_ domain.CatalogAPI = (*Client)(nil)
	_ domain.OrderAPI   = (*Client)(nil)
	_ domain.UserAPI    = (*Client)(nil)
)

// --- auth ---

// Login exchanges credentials for a user and token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/public/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its user and token pair.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	in := map[string]string{"refreshToken": refreshToken}
	return c.do(ctx, http.MethodPost, "/api/public/auth/logout", in, nil)
}

// --- foods ---

// PublicFoods lists the menu shown to customers.
func (c *Client) PublicFoods(ctx context.Context) ([]domain.Food, error) {
	var out envelope[[]domain.Food]
	if err := c.do(ctx, http.MethodGet, "/api/public/foods", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AdminFoods lists every food, including unavailable ones.
func (c *Client) AdminFoods(ctx context.Context) ([]domain.Food, error) {
	var out envelope[[]domain.Food]
	if err := c.do(ctx, http.MethodGet, "/api/admin/foods", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateFood adds a food to the menu.
func (c *Client) CreateFood(ctx context.Context, f domain.Food) (*domain.Food, error) {
	var out envelope[*domain.Food]
	if err := c.do(ctx, http.MethodPost, "/api/foods", f, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UpdateFood replaces the food with the given id.
func (c *Client) UpdateFood(ctx context.Context, id string, f domain.Food) (*domain.Food, error) {
	var out envelope[*domain.Food]
	if err := c.do(ctx, http.MethodPut, "/api/admin/foods/"+url.PathEscape(id), f, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DeleteFood removes a food.
func (c *Client) DeleteFood(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/foods/"+url.PathEscape(id), nil, nil)
}

// --- orders ---

// MyOrders lists the current user's orders.
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var out envelope[[]domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/private/orders", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AllOrders lists every order (admin).
func (c *Client) AllOrders(ctx context.Context) ([]domain.Order, error) {
	var out envelope[[]domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UpdateOrderStatus asks the backend to move an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	in := map[string]domain.OrderStatus{"status": status}
	var out envelope[*domain.Order]
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/status", in, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// --- users ---

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context) ([]domain.User, error) {
	var out envelope[[]domain.User]
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// UpdateUser changes a user's contact details.
func (c *Client) UpdateUser(ctx context.Context, id string, phone string, addr domain.Address) error {
	in := struct {
		Phone   string         `json:"phone"`
		Address domain.Address `json:"address"`
	}{phone, addr}
	return c.do(ctx, http.MethodPut, "/api/private/users/update/"+url.PathEscape(id), in, nil)
}
