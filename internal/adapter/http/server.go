// Package adapthttp implements the local HTTP API and serves the console SPA.
package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"storefront/internal/app"
)

// Services bundles the application services the API routes to.
type Services struct {
	Session   *app.SessionService
	Cart      *app.CartService
	Catalog   *app.CatalogService
	Orders    *app.OrderService
	Users     *app.UserService
	Dashboard *app.DashboardService
	Checkout  *app.CheckoutService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	session   *app.SessionService
	cart      *app.CartService
	catalog   *app.CatalogService
	orders    *app.OrderService
	users     *app.UserService
	dashboard *app.DashboardService
	checkout  *app.CheckoutService
	webDir    string
	log       zerolog.Logger
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, log zerolog.Logger) *Server {
	return &Server{
		session:   svc.Session,
		cart:      svc.Cart,
		catalog:   svc.Catalog,
		orders:    svc.Orders,
		users:     svc.Users,
		dashboard: svc.Dashboard,
		checkout:  svc.Checkout,
		webDir:    webDir,
		log:       log,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(withNoCache)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
			r.Post("/logout", s.handleLogout)
			r.Put("/profile", s.handleProfile)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handleCart)
			r.Delete("/", s.handleCartClear)
			r.Post("/items", s.handleCartAdd)
			r.Put("/items/{foodID}", s.handleCartQuantity)
			r.Delete("/items/{foodID}", s.handleCartRemove)
			r.Post("/checkout", s.handleCheckout)
		})

		r.Get("/foods", s.handleFoods)
		r.Get("/orders", s.handleMyOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/foods", s.handleAdminFoods)
			r.Post("/foods", s.handleCreateFood)
			r.Put("/foods/{id}", s.handleUpdateFood)
			r.Delete("/foods/{id}", s.handleDeleteFood)
			r.Get("/orders", s.handleAllOrders)
			r.Put("/orders/{id}/status", s.handleOrderStatus)
			r.Get("/users", s.handleAdminUsers)
			r.Delete("/users/{id}", s.handleDeleteUser)
		})
	})

	r.Handle("/*", spaFromDisk(s.webDir))
	return r
}
