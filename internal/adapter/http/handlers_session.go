package adapthttp

import (
	"net/http"

	"storefront/internal/domain"
)

type sessionView struct {
	Authenticated   bool         `json:"authenticated"`
	LoginRequired   bool         `json:"loginRequired"`
	User            *domain.User `json:"user"`
	RememberedEmail string       `json:"rememberedEmail,omitempty"`
}

func (s *Server) sessionView(r *http.Request) sessionView {
	cur := s.session.Current()
	return sessionView{
		Authenticated:   cur.Authenticated(),
		LoginRequired:   cur.LoginRequired,
		User:            cur.User,
		RememberedEmail: s.session.RememberedEmail(r.Context()),
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionView(r))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.session.Login(r.Context(), body.Email, body.Password, body.Remember); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionView(r))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Phone           string `json:"phone"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reg := domain.Registration{
		Name:            body.Name,
		Email:           body.Email,
		Phone:           body.Phone,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
	}
	if _, err := s.session.Register(r.Context(), reg); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.sessionView(r))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.session.Logout(r.Context())
	writeJSON(w, http.StatusOK, s.sessionView(r))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone   string         `json:"phone"`
		Address domain.Address `json:"address"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := s.session.UpdateProfile(r.Context(), body.Phone, body.Address)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
