package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"storefront/internal/adapter/memory"
	"storefront/internal/domain"
)

type mockAuthAPI struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	registerFn func(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	logoutFn   func(ctx context.Context, refreshToken string) error
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthAPI) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, reg)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthAPI) Logout(ctx context.Context, refreshToken string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, refreshToken)
	}
	return nil
}

type mockUserAPI struct {
	adminUsersFn func(ctx context.Context) ([]domain.User, error)
	deleteUserFn func(ctx context.Context, id string) error
	updateUserFn func(ctx context.Context, id, phone string, addr domain.Address) error
}

func (m *mockUserAPI) AdminUsers(ctx context.Context) ([]domain.User, error) {
	if m.adminUsersFn != nil {
		return m.adminUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockUserAPI) DeleteUser(ctx context.Context, id string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

func (m *mockUserAPI) UpdateUser(ctx context.Context, id, phone string, addr domain.Address) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, phone, addr)
	}
	return nil
}

type mockCatalogAPI struct {
	publicFoodsFn func(ctx context.Context) ([]domain.Food, error)
	adminFoodsFn  func(ctx context.Context) ([]domain.Food, error)
	createFoodFn  func(ctx context.Context, f domain.Food) (*domain.Food, error)
	updateFoodFn  func(ctx context.Context, id string, f domain.Food) (*domain.Food, error)
	deleteFoodFn  func(ctx context.Context, id string) error
}

func (m *mockCatalogAPI) PublicFoods(ctx context.Context) ([]domain.Food, error) {
	if m.publicFoodsFn != nil {
		return m.publicFoodsFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogAPI) AdminFoods(ctx context.Context) ([]domain.Food, error) {
	if m.adminFoodsFn != nil {
		return m.adminFoodsFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogAPI) CreateFood(ctx context.Context, f domain.Food) (*domain.Food, error) {
	if m.createFoodFn != nil {
		return m.createFoodFn(ctx, f)
	}
	f.ID = "new"
	return &f, nil
}

func (m *mockCatalogAPI) UpdateFood(ctx context.Context, id string, f domain.Food) (*domain.Food, error) {
	if m.updateFoodFn != nil {
		return m.updateFoodFn(ctx, id, f)
	}
	f.ID = id
	return &f, nil
}

func (m *mockCatalogAPI) DeleteFood(ctx context.Context, id string) error {
	if m.deleteFoodFn != nil {
		return m.deleteFoodFn(ctx, id)
	}
	return nil
}

type mockOrderAPI struct {
	myOrdersFn     func(ctx context.Context) ([]domain.Order, error)
	allOrdersFn    func(ctx context.Context) ([]domain.Order, error)
	updateStatusFn func(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

func (m *mockOrderAPI) MyOrders(ctx context.Context) ([]domain.Order, error) {
	if m.myOrdersFn != nil {
		return m.myOrdersFn(ctx)
	}
	return nil, nil
}

func (m *mockOrderAPI) AllOrders(ctx context.Context) ([]domain.Order, error) {
	if m.allOrdersFn != nil {
		return m.allOrdersFn(ctx)
	}
	return nil, nil
}

func (m *mockOrderAPI) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return &domain.Order{ID: id, Status: status}, nil
}

// failingStore rejects writes and removals.
type failingStore struct {
	*memory.DB
}

var errStoreDown = errors.New("store down")

func (failingStore) Set(context.Context, string, string) error { return errStoreDown }
func (failingStore) Remove(context.Context, ...string) error { return errStoreDown }

func quietLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// loggedIn returns a session service holding a session for role.
func loggedIn(t *testing.T, store domain.Store, role string) *SessionService {
	t.Helper()
	sess := NewSessionService(store, &mockAuthAPI{}, &mockUserAPI{}, quietLogger())
	user := domain.User{ID: "u-" + role, Name: "Test " + role, Email: role + "@example.com", Role: role}
	if err := sess.EstablishSession(context.Background(), user, domain.Tokens{AccessToken: "at", RefreshToken: "rt"}); err != nil {
		t.Fatalf("EstablishSession: %v", err)
	}
	return sess
}
