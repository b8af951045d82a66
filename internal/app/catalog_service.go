package app

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

// FoodFilter narrows the public menu. Empty fields match everything.
// Search is case-insensitive over name and description; Category must
// match exactly.
type FoodFilter struct {
	Search   string
	Category string
}

func (f FoodFilter) match(food domain.Food) bool {
	if f.Category != "" && food.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(food.Name), term) ||
		strings.Contains(strings.ToLower(food.Description), term)
}

// CatalogService reads the menu and lets admins manage it.
type CatalogService struct {
	api  domain.CatalogAPI
	sess *SessionService
}

// NewCatalogService creates a catalog service.
func NewCatalogService(api domain.CatalogAPI, sess *SessionService) *CatalogService {
	return &CatalogService{api: api, sess: sess}
}

// PublicFoods returns the public menu filtered locally by filter.
func (s *CatalogService) PublicFoods(ctx context.Context, filter FoodFilter) ([]domain.Food, error) {
	foods, err := s.api.PublicFoods(ctx)
	if err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	if filter == (FoodFilter{}) {
		return foods, nil
	}

	out := make([]domain.Food, 0, len(foods))
	for _, f := range foods {
		if filter.match(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// AdminFoods returns every food, including unavailable ones.
func (s *CatalogService) AdminFoods(ctx context.Context) ([]domain.Food, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.api.AdminFoods(ctx)
}

// CreateFood adds a food to the menu.
func (s *CatalogService) CreateFood(ctx context.Context, f domain.Food) (*domain.Food, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := prepareFood(&f); err != nil {
		return nil, err
	}
	return s.api.CreateFood(ctx, f)
}

// UpdateFood replaces the food with the given id.
func (s *CatalogService) UpdateFood(ctx context.Context, id string, f domain.Food) (*domain.Food, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: food id is required", ErrInvalidInput)
	}
	if err := prepareFood(&f); err != nil {
		return nil, err
	}
	f.ID = ""
	return s.api.UpdateFood(ctx, id, f)
}

// DeleteFood removes the food with the given id.
func (s *CatalogService) DeleteFood(ctx context.Context, id string) error {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: food id is required", ErrInvalidInput)
	}
	return s.api.DeleteFood(ctx, id)
}

func prepareFood(f *domain.Food) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.Image = strings.TrimSpace(f.Image)
	switch {
	case f.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case f.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case f.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	case f.Image == "":
		return fmt.Errorf("%w: image is required", ErrInvalidInput)
	case f.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case f.PreparationTime < 0:
		return fmt.Errorf("%w: preparation time must not be negative", ErrInvalidInput)
	}
	if f.PreparationTime == 0 {
		f.PreparationTime = domain.DefaultPreparationTime
	}
	return nil
}
