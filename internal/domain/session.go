// Package domain contains the core storefront entities and ports.
package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Storage keys shared by every Store adapter.
const (
	KeyUser         = "user"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyCart         = "cart"
	KeyLoginEmail   = "loginEmail"
)

// RoleAdmin is the role that unlocks the admin console.
const RoleAdmin = "admin"

// Address is a delivery address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode,omitempty"`
}

// User is the profile record the backend returns with a token pair.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Address   *Address   `json:"address,omitempty"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts the backend's "_id" spelling as well as "id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		ObjectID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.ObjectID
	}
	return nil
}

// IsAdmin reports whether the user may use the admin console.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Tokens is the access/refresh credential pair issued by the backend.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present.
func (t Tokens) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// Session is the current user identity plus its token pair.
type Session struct {
	User          *User  `json:"user"`
	Tokens        Tokens `json:"-"`
	LoginRequired bool   `json:"loginRequired"`
}

// Authenticated reports whether the session holds a user and both tokens.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Tokens.Complete()
}

// Registration is the sign-up form.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// AuthResult is what login and registration return.
type AuthResult struct {
	User User `json:"user"`
	Tokens
}

// Store is the durable string key-value port. It survives restarts and has
// no expiry.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// AuthAPI is the port for the backend's authentication endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}
