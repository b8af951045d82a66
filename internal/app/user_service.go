package app

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// UserService is the admin view over registered users.
type UserService struct {
	api  domain.UserAPI
	sess *SessionService
}

// NewUserService creates a user service.
func NewUserService(api domain.UserAPI, sess *SessionService) *UserService {
	return &UserService{api: api, sess: sess}
}

// AdminUsers lists every registered user.
func (s *UserService) AdminUsers(ctx context.Context) ([]domain.User, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.api.AdminUsers(ctx)
}

// DeleteUser removes a user. Admins cannot delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	me, err := s.sess.RequireAdmin()
	if err != nil {
		return err
	}
	switch {
	case id == "":
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	case id == me.ID:
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}
	return s.api.DeleteUser(ctx, id)
}
