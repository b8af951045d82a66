package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/api/public/auth/refresh"

var errNoRefreshToken = errors.New("no refresh token")

// TokenStore is where Transport reads and writes credentials.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(ctx context.Context, token string) error
	// Discard drops the whole session, memory and storage.
	Discard(ctx context.Context) error
	// RequireLogin flags that the user must log in again.
	RequireLogin()
}

// Transport attaches the bearer token to every request and, when the backend
// answers 401 with tokenExpired, refreshes the access token and replays the
// request once. Concurrent expirations share a single refresh call.
type Transport struct {
	base       http.RoundTripper
	refresher  *http.Client
	refreshURL string
	tokens     TokenStore
	log        zerolog.Logger
	group      singleflight.Group
}

// NewTransport wraps base. The refresh call goes straight to base so it is
// never intercepted itself.
func NewTransport(base http.RoundTripper, baseURL string, tokens TokenStore, log zerolog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:       base,
		refresher:  &http.Client{Transport: base},
		refreshURL: strings.TrimRight(baseURL, "/") + refreshPath,
		tokens:     tokens,
		log:        log,
	}
}

// Bind sets the token store when it could not be passed to NewTransport,
// typically because the store itself calls the backend through this
// transport. It must run before the first request.
func (t *Transport) Bind(tokens TokenStore) {
	t.tokens = tokens
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	sent := t.tokens.AccessToken()
	resp, err := t.base.RoundTrip(authorize(req, sent))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	expired, err := tokenExpired(resp)
	if err != nil {
		return nil, err
	}
	if !expired {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		t.log.Warn().Str("url", req.URL.String()).Msg("token expired on a request that cannot be replayed")
		return resp, nil
	}

	token, err := t.freshToken(req.Context(), sent)
	if errors.Is(err, errNoRefreshToken) {
		return resp, nil
	}
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	retry, err := replay(req, token)
	if err != nil {
		return nil, err
	}
	t.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("replaying request with refreshed token")
	return t.base.RoundTrip(retry)
}

// freshToken returns an access token newer than stale. If another request
// already refreshed it, the current token is reused without a new call.
func (t *Transport) freshToken(ctx context.Context, stale string) (string, error) {
	if cur := t.tokens.AccessToken(); cur != "" && cur != stale {
		return cur, nil
	}

	ch := t.group.DoChan("refresh", func() (any, error) {
		return t.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *Transport) refresh(ctx context.Context) (string, error) {
	refreshToken := t.tokens.RefreshToken()
	if refreshToken == "" {
		if err := t.tokens.Discard(ctx); err != nil {
			t.log.Error().Err(err).Msg("discard session")
		}
		t.tokens.RequireLogin()
		return "", errNoRefreshToken
	}

	token, err := t.requestRefresh(ctx, refreshToken)
	if err != nil {
		t.log.Warn().Err(err).Msg("token refresh failed")
		t.tokens.RequireLogin()
		return "", fmt.Errorf("%w: %w", ErrLoginRequired, err)
	}

	if err := t.tokens.SetAccessToken(ctx, token); err != nil {
		t.log.Error().Err(err).Msg("persist refreshed access token")
	}
	t.log.Info().Msg("access token refreshed")
	return token, nil
}

func (t *Transport) requestRefresh(ctx context.Context, refreshToken string) (string, error) {
	b, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.refresher.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response without access token")
	}
	return out.AccessToken, nil
}

func authorize(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		(&oauth2.Token{AccessToken: token}).SetAuthHeader(r)
	}
	return r
}

func replay(req *http.Request, token string) (*http.Request, error) {
	r := authorize(req, token)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	return r, nil
}

// tokenExpired reads the 401 body for the tokenExpired flag and puts the body
// back so the caller still sees the original response.
func tokenExpired(resp *http.Response) (bool, error) {
	b, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return false, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))

	var body struct {
		TokenExpired bool `json:"tokenExpired"`
	}
	if json.Unmarshal(b, &body) != nil {
		return false, nil
	}
	return body.TokenExpired, nil
}
