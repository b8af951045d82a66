package app

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
)

// RecentOrderLimit caps the orders shown on the dashboard.
const RecentOrderLimit = 5

// Overview is the admin dashboard summary.
type Overview struct {
	TotalOrders  int            `json:"totalOrders"`
	TotalRevenue float64        `json:"totalRevenue"`
	TotalUsers   int            `json:"totalUsers"`
	TotalFoods   int            `json:"totalFoods"`
	RecentOrders []domain.Order `json:"recentOrders"`
}

// DashboardService aggregates orders, users and foods for admins.
type DashboardService struct {
	orders domain.OrderAPI
	users  domain.UserAPI
	foods  domain.CatalogAPI
	sess   *SessionService
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(orders domain.OrderAPI, users domain.UserAPI, foods domain.CatalogAPI, sess *SessionService) *DashboardService {
	return &DashboardService{orders: orders, users: users, foods: foods, sess: sess}
}

// Overview fetches the three collections concurrently and summarises them.
// The first failure cancels the others.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	if _, err := s.sess.RequireAdmin(); err != nil {
		return nil, err
	}

	var (
		orders []domain.Order
		users  []domain.User
		foods  []domain.Food
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.orders.AllOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.users.AdminUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		foods, err = s.foods.AdminFoods(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
	}

	recent := append([]domain.Order(nil), orders...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > RecentOrderLimit {
		recent = recent[:RecentOrderLimit]
	}
	if recent == nil {
		recent = []domain.Order{}
	}

	return &Overview{
		TotalOrders:  len(orders),
		TotalRevenue: revenue.InexactFloat64(),
		TotalUsers:   len(users),
		TotalFoods:   len(foods),
		RecentOrders: recent,
	}, nil
}
