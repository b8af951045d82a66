package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestTracingExportsServerAndClientSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out bytes.Buffer
	shutdown, err := Setup("storefront-test", &out)
	require.NoError(t, err)

	var gotTraceparent string
	srv := httptest.NewServer(Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}), "test"))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	resp, err := client.Get(srv.URL + "/api/foods")
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck

	require.NoError(t, shutdown(context.Background()))
	assert.NotEmpty(t, gotTraceparent, "client span must propagate trace context")
	assert.Contains(t, out.String(), "GET /api/foods")
	assert.Contains(t, out.String(), "storefront-test")
}

func TestSetupWithoutExporter(t *testing.T) {
	shutdown, err := Setup("storefront-test", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
