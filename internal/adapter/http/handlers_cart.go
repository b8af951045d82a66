package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/app"
	"storefront/internal/domain"
)

type cartView struct {
	Items []domain.LineItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func newCartView(items []domain.LineItem) cartView {
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartView{Items: items, Total: app.Total(items), Count: app.Count(items)}
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartView(s.cart.Items()))
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var food domain.Food
	if err := parseRecord(r, &food); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := s.cart.Add(r.Context(), food)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(items))
}

func (s *Server) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := s.cart.UpdateQuantity(r.Context(), chi.URLParam(r, "foodID"), body.Quantity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(items))
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	items, err := s.cart.Remove(r.Context(), chi.URLParam(r, "foodID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(items))
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.Clear(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(nil))
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body app.DeliveryDetails
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := s.checkout.Checkout(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
