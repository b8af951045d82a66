package domain

import (
	"context"
	"time"
)

// Food is a menu entry owned by the backend.
type Food struct {
	ID              string     `json:"_id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	Category        string     `json:"category"`
	Image           string     `json:"image"`
	Rating          float64    `json:"rating,omitempty"`
	IsAvailable     bool       `json:"isAvailable"`
	PreparationTime int        `json:"preparationTime,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// DefaultPreparationTime is applied to new foods that do not set one, in minutes.
const DefaultPreparationTime = 20

// CatalogAPI is the port for the backend's food endpoints.
type CatalogAPI interface {
	PublicFoods(ctx context.Context) ([]Food, error)
	AdminFoods(ctx context.Context) ([]Food, error)
	CreateFood(ctx context.Context, f Food) (*Food, error)
	UpdateFood(ctx context.Context, id string, f Food) (*Food, error)
	DeleteFood(ctx context.Context, id string) error
}

// UserAPI is the port for the backend's user endpoints.
type UserAPI interface {
	AdminUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateUser(ctx context.Context, id string, phone string, addr Address) error
}
