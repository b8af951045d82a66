package domain_test

import (
	"encoding/json"
	"testing"

	"storefront/internal/domain"
)

func TestUserUnmarshalAcceptsObjectID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"id", `{"id":"u1","name":"An"}`, "u1"},
		{"_id", `{"_id":"u2","name":"An"}`, "u2"},
		{"both prefers id", `{"id":"u3","_id":"x"}`, "u3"},
		{"neither", `{"name":"An"}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var u domain.User
			if err := json.Unmarshal([]byte(tc.in), &u); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if u.ID != tc.want {
				t.Errorf("ID = %q; want %q", u.ID, tc.want)
			}
		})
	}
}

func TestCustomerUnmarshal(t *testing.T) {
	var o domain.Order
	if err := json.Unmarshal([]byte(`{"_id":"o1","user":"u9","status":"pending"}`), &o); err != nil {
		t.Fatalf("unmarshal bare id: %v", err)
	}
	if o.User == nil || o.User.ID != "u9" {
		t.Errorf("expected user id u9, got %+v", o.User)
	}

	if err := json.Unmarshal([]byte(`{"_id":"o2","user":{"_id":"u1","name":"Binh"}}`), &o); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if o.User.Name != "Binh" {
		t.Errorf("expected name Binh, got %q", o.User.Name)
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range domain.OrderStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if domain.OrderStatus("shipped").Valid() {
		t.Error("shipped should not be valid")
	}
}

func TestSessionAuthenticated(t *testing.T) {
	full := domain.Session{User: &domain.User{ID: "1"}, Tokens: domain.Tokens{AccessToken: "a", RefreshToken: "r"}}
	if !full.Authenticated() {
		t.Error("expected authenticated")
	}
	noRefresh := full
	noRefresh.Tokens.RefreshToken = ""
	if noRefresh.Authenticated() {
		t.Error("missing refresh token should not authenticate")
	}
	if (domain.Session{Tokens: full.Tokens}).Authenticated() {
		t.Error("missing user should not authenticate")
	}
}
