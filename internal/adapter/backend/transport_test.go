package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type fakeTokens struct {
	mu            sync.Mutex
	access        string
	refresh       string
	discarded     int
	loginRequired int
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) SetAccessToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = token
	return nil
}

func (f *fakeTokens) Discard(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = "", ""
	f.discarded++
	return nil
}

func (f *fakeTokens) RequireLogin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginRequired++
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func expired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "jwt expired", "tokenExpired": true})
}

// backendStub serves /api/private/orders for "Bearer fresh" and the refresh
// endpoint. refreshStatus != 200 makes refresh fail.
type backendStub struct {
	refreshCalls  atomic.Int32
	ordersCalls   atomic.Int32
	refreshStatus int
	retryStatus   int
}

func (b *backendStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/public/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "refresh-1", body.RefreshToken)
		assert.Empty(t, r.Header.Get("Authorization"))
		if b.refreshStatus != 0 && b.refreshStatus != http.StatusOK {
			writeJSON(w, b.refreshStatus, map[string]any{"message": "refresh token revoked"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"accessToken": "fresh"})
	})
	mux.HandleFunc("/api/private/orders", func(w http.ResponseWriter, r *http.Request) {
		b.ordersCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			expired(w)
			return
		}
		if b.retryStatus != 0 {
			writeJSON(w, b.retryStatus, map[string]any{"message": "retry failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []domain.Order{{ID: "o1", Status: domain.OrderPending}}})
	})
	return mux
}

func newTestClient(t *testing.T, stub *backendStub, tokens *fakeTokens) *Client {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)
	tr := NewTransport(http.DefaultTransport, srv.URL, tokens, zerolog.Nop())
	return New(srv.URL, tr)
}

func TestTransportAttachesBearer(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": []domain.Food{}})
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "abc"}
	c := New(srv.URL, NewTransport(nil, srv.URL, tokens, zerolog.Nop()))

	_, err := c.PublicFoods(context.Background())
	require.NoError(t, err)

	_ = tokens.Discard(context.Background())
	_, err = c.PublicFoods(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer abc", ""}, got)
}

func TestTransportRefreshesOnceAndReplays(t *testing.T) {
	stub := &backendStub{}
	tokens := &fakeTokens{access: "stale", refresh: "refresh-1"}
	c := newTestClient(t, stub, tokens)

	orders, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)

	assert.EqualValues(t, 1, stub.refreshCalls.Load())
	assert.EqualValues(t, 2, stub.ordersCalls.Load())
	assert.Equal(t, "fresh", tokens.AccessToken())
	assert.Zero(t, tokens.loginRequired)
}

func TestTransportReturnsRetryError(t *testing.T) {
	stub := &backendStub{retryStatus: http.StatusForbidden}
	tokens := &fakeTokens{access: "stale", refresh: "refresh-1"}
	c := newTestClient(t, stub, tokens)

	_, err := c.MyOrders(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "retry failed", apiErr.Message)
	assert.EqualValues(t, 1, stub.refreshCalls.Load())
	assert.EqualValues(t, 2, stub.ordersCalls.Load())
}

func TestTransportRefreshFailure(t *testing.T) {
	stub := &backendStub{refreshStatus: http.StatusUnauthorized}
	tokens := &fakeTokens{access: "stale", refresh: "refresh-1"}
	c := newTestClient(t, stub, tokens)

	_, err := c.MyOrders(context.Background())
	require.ErrorIs(t, err, ErrLoginRequired)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "refresh token revoked", apiErr.Message)

	// Stored tokens are left alone; only the login-required signal fires.
	assert.Equal(t, "stale", tokens.AccessToken())
	assert.Equal(t, "refresh-1", tokens.RefreshToken())
	assert.Zero(t, tokens.discarded)
	assert.Equal(t, 1, tokens.loginRequired)
	assert.EqualValues(t, 1, stub.ordersCalls.Load())
}

func TestTransportWithoutRefreshToken(t *testing.T) {
	stub := &backendStub{}
	tokens := &fakeTokens{access: "stale"}
	c := newTestClient(t, stub, tokens)

	_, err := c.MyOrders(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, apiErr.TokenExpired)
	assert.Equal(t, "jwt expired", apiErr.Message)

	assert.Zero(t, stub.refreshCalls.Load())
	assert.Equal(t, 1, tokens.discarded)
	assert.Equal(t, 1, tokens.loginRequired)
}

func TestTransportIgnoresPlainUnauthorized(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			refreshCalls.Add(1)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "wrong password"})
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "a", refresh: "refresh-1"}
	c := New(srv.URL, NewTransport(nil, srv.URL, tokens, zerolog.Nop()))

	_, err := c.Login(context.Background(), "a@b.c", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "wrong password", apiErr.Message)
	assert.Zero(t, refreshCalls.Load())
}

func TestTransportConcurrentExpirySharesRefresh(t *testing.T) {
	stub := &backendStub{}
	tokens := &fakeTokens{access: "stale", refresh: "refresh-1"}
	c := newTestClient(t, stub, tokens)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.MyOrders(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, stub.refreshCalls.Load())
}

func TestTransportReplaysBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			writeJSON(w, http.StatusOK, map[string]any{"accessToken": "fresh"})
			return
		}
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer fresh" {
			expired(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"_id": "o1", "status": "confirmed"}})
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "stale", refresh: "refresh-1"}
	c := New(srv.URL, NewTransport(nil, srv.URL, tokens, zerolog.Nop()))

	o, err := c.UpdateOrderStatus(context.Background(), "o1", domain.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, o.Status)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
	assert.JSONEq(t, `{"status":"confirmed"}`, bodies[1])
}

func TestTransportCanceledWaiter(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			<-block
			writeJSON(w, http.StatusOK, map[string]any{"accessToken": "fresh"})
			return
		}
		expired(w)
	}))
	defer srv.Close()
	defer close(block)

	tokens := &fakeTokens{access: "stale", refresh: "refresh-1"}
	c := New(srv.URL, NewTransport(nil, srv.URL, tokens, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.MyOrders(ctx)
		done <- err
	}()
	cancel()

	err := <-done
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
