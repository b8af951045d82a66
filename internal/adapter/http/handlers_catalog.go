package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/app"
	"storefront/internal/domain"
)

func (s *Server) handleFoods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	foods, err := s.catalog.PublicFoods(r.Context(), app.FoodFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": nonNil(foods)})
}

func (s *Server) handleAdminFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := s.catalog.AdminFoods(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": nonNil(foods)})
}

// foodForm is the admin food editor. Availability defaults to true when the
// form leaves it out.
type foodForm struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	Image           string  `json:"image"`
	IsAvailable     *bool   `json:"isAvailable"`
	PreparationTime int     `json:"preparationTime"`
}

func (f foodForm) food() domain.Food {
	available := true
	if f.IsAvailable != nil {
		available = *f.IsAvailable
	}
	return domain.Food{
		Name:            f.Name,
		Description:     f.Description,
		Price:           f.Price,
		Category:        f.Category,
		Image:           f.Image,
		IsAvailable:     available,
		PreparationTime: f.PreparationTime,
	}
}

func (s *Server) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	var form foodForm
	if err := parseJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	food, err := s.catalog.CreateFood(r.Context(), form.food())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, food)
}

func (s *Server) handleUpdateFood(w http.ResponseWriter, r *http.Request) {
	var form foodForm
	if err := parseJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	food, err := s.catalog.UpdateFood(r.Context(), chi.URLParam(r, "id"), form.food())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

func (s *Server) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteFood(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
