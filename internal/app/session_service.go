package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

var sessionKeys = []string{domain.KeyUser, domain.KeyAccessToken, domain.KeyRefreshToken}

// SessionService owns the current user and token pair and keeps them in the
// store. It also serves as the backend transport's token store.
type SessionService struct {
	mu    sync.RWMutex
	store domain.Store
	auth  domain.AuthAPI
	users domain.UserAPI
	log   zerolog.Logger
	sess  domain.Session
}

// NewSessionService creates a session service. Call Restore before use.
func NewSessionService(store domain.Store, auth domain.AuthAPI, users domain.UserAPI, log zerolog.Logger) *SessionService {
	return &SessionService{
		store: store,
		auth:  auth,
		users: users,
		log:   log.With().Str("component", "session").Logger(),
	}
}

// Restore rehydrates the session from the store. Unless the user record and
// both tokens are all present and readable, every session key is removed.
func (s *SessionService) Restore(ctx context.Context) error {
	rawUser, userOK, err := s.store.Get(ctx, domain.KeyUser)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	access, accessOK, err := s.store.Get(ctx, domain.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	refresh, refreshOK, err := s.store.Get(ctx, domain.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if userOK && accessOK && refreshOK && access != "" && refresh != "" {
		var u domain.User
		err := json.Unmarshal([]byte(rawUser), &u)
		if err == nil && u.ID == "" {
			err = errors.New("user record has no id")
		}
		if err == nil {
			s.mu.Lock()
			s.sess = domain.Session{User: &u, Tokens: domain.Tokens{AccessToken: access, RefreshToken: refresh}}
			s.mu.Unlock()
			s.log.Info().Str("user_id", u.ID).Msg("session restored")
			return nil
		}
		s.log.Error().Err(err).Msg("cached user record is malformed")
	}

	s.mu.Lock()
	s.sess = domain.Session{}
	s.mu.Unlock()
	if err := s.store.Remove(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("clear partial session: %w", err)
	}
	return nil
}

// EstablishSession commits a user and token pair: memory first, then the
// store. Login and registration both end here.
func (s *SessionService) EstablishSession(ctx context.Context, user domain.User, tokens domain.Tokens) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	s.sess = domain.Session{User: &user, Tokens: tokens}
	s.mu.Unlock()

	if err := s.store.Set(ctx, domain.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyAccessToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyRefreshToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("session established")
	return nil
}

// Login authenticates against the backend and establishes the session. With
// remember set only the e-mail is kept for the next login form.
func (s *SessionService) Login(ctx context.Context, email, password string, remember bool) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.EstablishSession(ctx, res.User, res.Tokens); err != nil {
		return nil, err
	}

	if remember {
		err = s.store.Set(ctx, domain.KeyLoginEmail, email)
	} else {
		err = s.store.Remove(ctx, domain.KeyLoginEmail)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("update remembered email")
	}
	return s.User(), nil
}

// RememberedEmail returns the e-mail saved by a "remember me" login.
func (s *SessionService) RememberedEmail(ctx context.Context) string {
	v, _, err := s.store.Get(ctx, domain.KeyLoginEmail)
	if err != nil {
		s.log.Warn().Err(err).Msg("read remembered email")
	}
	return v
}

// Register creates an account and establishes its session.
func (s *SessionService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	switch {
	case reg.Name == "" || reg.Email == "" || reg.Password == "":
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	case reg.Password != reg.ConfirmPassword:
		return nil, fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}

	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if err := s.EstablishSession(ctx, res.User, res.Tokens); err != nil {
		return nil, err
	}
	return s.User(), nil
}

// Logout asks the backend to invalidate the refresh token and then clears the
// session. It always succeeds locally; backend and store errors are logged.
func (s *SessionService) Logout(ctx context.Context) {
	refresh := s.RefreshToken()
	if err := s.auth.Logout(ctx, refresh); err != nil {
		s.log.Warn().Err(err).Msg("logout call failed")
	}

	s.mu.Lock()
	s.sess = domain.Session{}
	s.mu.Unlock()

	if err := s.store.Remove(ctx, sessionKeys...); err != nil {
		s.log.Error().Err(err).Msg("clear stored session")
	}
}

// Current returns a snapshot of the session.
func (s *SessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.sess
	if s.sess.User != nil {
		u := *s.sess.User
		out.User = &u
	}
	return out
}

// User returns a copy of the logged-in user, or nil.
func (s *SessionService) User() *domain.User {
	return s.Current().User
}

// RequireUser returns the logged-in user or ErrNotAuthenticated.
func (s *SessionService) RequireUser() (*domain.User, error) {
	cur := s.Current()
	if !cur.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return cur.User, nil
}

// RequireAdmin returns the logged-in admin, ErrNotAuthenticated or ErrForbidden.
func (s *SessionService) RequireAdmin() (*domain.User, error) {
	u, err := s.RequireUser()
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, ErrForbidden
	}
	return u, nil
}

// AmendUser applies mutate to the cached user record and persists it.
func (s *SessionService) AmendUser(ctx context.Context, mutate func(u *domain.User)) (*domain.User, error) {
	s.mu.Lock()
	if s.sess.User == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	u := *s.sess.User
	mutate(&u)
	s.sess.User = &u
	s.mu.Unlock()

	raw, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyUser, string(raw)); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	return &u, nil
}

// UpdateProfile saves the phone and address on the backend and then in the
// cached user record.
func (s *SessionService) UpdateProfile(ctx context.Context, phone string, addr domain.Address) (*domain.User, error) {
	u, err := s.RequireUser()
	if err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.TrimSpace(addr.Street) == "" || strings.TrimSpace(addr.City) == "" {
		return nil, fmt.Errorf("%w: phone, street and city are required", ErrInvalidInput)
	}

	if err := s.users.UpdateUser(ctx, u.ID, phone, addr); err != nil {
		return nil, err
	}
	return s.AmendUser(ctx, func(u *domain.User) {
		u.Phone = phone
		a := addr
		u.Address = &a
	})
}

// --- backend.TokenStore ---

// AccessToken returns the current access token.
func (s *SessionService) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Tokens.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *SessionService) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Tokens.RefreshToken
}

// SetAccessToken replaces the access token after a refresh.
//
// A token that arrives after the session ended is dropped. The lock covers
// the store write so it cannot land after Logout cleared the keys.
func (s *SessionService) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.Tokens.RefreshToken == "" {
		s.log.Debug().Msg("refreshed token dropped, session already ended")
		return nil
	}
	s.sess.Tokens.AccessToken = token
	return s.store.Set(ctx, domain.KeyAccessToken, token)
}

// Discard drops the session in memory and in the store.
func (s *SessionService) Discard(ctx context.Context) error {
	s.mu.Lock()
	s.sess = domain.Session{LoginRequired: s.sess.LoginRequired}
	s.mu.Unlock()
	return s.store.Remove(ctx, sessionKeys...)
}

// RequireLogin flags that the user has to log in again. The flag is cleared
// by the next EstablishSession.
func (s *SessionService) RequireLogin() {
	s.mu.Lock()
	s.sess.LoginRequired = true
	s.mu.Unlock()
	s.log.Info().Msg("login required")
}
