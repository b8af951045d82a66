package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// CartService keeps the shopping cart in memory and mirrors every change to
// the store.
type CartService struct {
	mu    sync.Mutex
	store domain.Store
	log   zerolog.Logger
	items []domain.LineItem
}

// NewCartService creates an empty cart. Call Restore to load the saved one.
func NewCartService(store domain.Store, log zerolog.Logger) *CartService {
	return &CartService{
		store: store,
		log:   log.With().Str("component", "cart").Logger(),
	}
}

// Restore loads the saved cart. A missing or unreadable record yields an
// empty cart.
func (s *CartService) Restore(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, domain.KeyCart)
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}

	var items []domain.LineItem
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.log.Error().Err(err).Msg("saved cart is malformed, starting empty")
			items = nil
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the line items in insertion order.
func (s *CartService) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Add puts one unit of food in the cart. A food already present has its
// quantity bumped instead of gaining a second line.
func (s *CartService) Add(ctx context.Context, food domain.Food) ([]domain.LineItem, error) {
	if food.ID == "" {
		return nil, fmt.Errorf("%w: food id is required", ErrInvalidInput)
	}
	if food.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	return s.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		for i := range items {
			if items[i].FoodID == food.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, domain.NewLineItem(food))
	})
}

// Remove drops the line for foodID. Unknown ids are ignored.
func (s *CartService) Remove(ctx context.Context, foodID string) ([]domain.LineItem, error) {
	return s.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		return without(items, foodID)
	})
}

// UpdateQuantity sets the quantity of foodID. Zero or less removes the line.
// Unknown ids are ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, foodID string, quantity int) ([]domain.LineItem, error) {
	return s.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		if quantity <= 0 {
			return without(items, foodID)
		}
		for i := range items {
			if items[i].FoodID == foodID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, func([]domain.LineItem) []domain.LineItem { return nil })
	return err
}

// Total is the sum of price times quantity over all lines.
func (s *CartService) Total() float64 {
	return Total(s.Items())
}

// Count is the number of units in the cart.
func (s *CartService) Count() int {
	return Count(s.Items())
}

// Total sums price times quantity without binary rounding drift.
func Total(items []domain.LineItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.InexactFloat64()
}

// Count sums the quantities of items.
func Count(items []domain.LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// mutate applies fn to a copy of the cart, commits the result in memory and
// then writes it to the store. The in-memory cart stays updated even when the
// write fails.
func (s *CartService) mutate(ctx context.Context, fn func([]domain.LineItem) []domain.LineItem) ([]domain.LineItem, error) {
	s.mu.Lock()
	next := fn(clone(s.items))
	s.items = next
	snapshot := clone(next)
	s.mu.Unlock()

	if snapshot == nil {
		snapshot = []domain.LineItem{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return snapshot, fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyCart, string(raw)); err != nil {
		s.log.Error().Err(err).Msg("persist cart")
		return snapshot, fmt.Errorf("persist cart: %w", err)
	}
	return snapshot, nil
}

func clone(items []domain.LineItem) []domain.LineItem {
	if items == nil {
		return nil
	}
	return append([]domain.LineItem(nil), items...)
}

func without(items []domain.LineItem, foodID string) []domain.LineItem {
	out := items[:0]
	for _, it := range items {
		if it.FoodID != foodID {
			out = append(out, it)
		}
	}
	return out
}
