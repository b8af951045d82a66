package adapthttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/rs/zerolog"

	"storefront/internal/adapter/backend"
	"storefront/internal/app"
)

type errorBody struct {
	Error         string `json:"error"`
	LoginRequired bool   `json:"loginRequired,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// parseJSON decodes a form body and rejects unknown fields.
func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// parseRecord decodes a backend record echoed by the SPA. Backend documents
// carry bookkeeping fields we do not model, so unknown fields are allowed.
func parseRecord(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// fail maps an application or backend error to a JSON response. Backend
// messages are shown verbatim when present.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := zerolog.Ctx(r.Context())
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Msg("client went away")
	case errors.Is(err, backend.ErrLoginRequired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "session expired, please log in again", LoginRequired: true})
	case errors.Is(err, app.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error(), LoginRequired: true})
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrInvalidStatus), errors.Is(err, app.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		body := errorBody{Error: backend.Message(err, "request failed")}
		if apiErr.Status == http.StatusUnauthorized && s.session.Current().LoginRequired {
			body.LoginRequired = true
		}
		log.Warn().Err(err).Msg("backend rejected request")
		writeJSON(w, status, body)
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "could not reach the server"})
	}
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if info, err := os.Stat(staticPath); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		// Client-side routes such as /cart or /admin/orders.
		http.ServeFile(w, r, indexPath)
	})
}
