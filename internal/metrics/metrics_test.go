package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/auth/tiktok/callback": "/auth/tiktok/callback",
		"/users/5d0c8b1e-3f1a-4c1e-9b8a-2f7f1f0e8a11": "/users/:param",
		"/items/12345?x=1":                            "/items/:param",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizePath(in), in)
	}
}

func TestRecordCounters(t *testing.T) {
	before := testutil.ToFloat64(OAuthFlowsTotal.WithLabelValues("gmail", OutcomeConnected))
	RecordOAuthFlow("gmail", OutcomeConnected)
	require.Equal(t, before+1, testutil.ToFloat64(OAuthFlowsTotal.WithLabelValues("gmail", OutcomeConnected)))

	ev := testutil.ToFloat64(StateEvictionsTotal)
	RecordStateEvictions(0)
	RecordStateEvictions(3)
	require.Equal(t, ev+3, testutil.ToFloat64(StateEvictionsTotal))
}

func TestRegisterHTTP_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := RegisterHTTP(HTTPConfig{Registry: reg, Gatherer: reg})
	require.NoError(t, err)

	// idempotente
	_, err = RegisterHTTP(HTTPConfig{Registry: reg, Gatherer: reg})
	require.NoError(t, err)

	app := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	RecordTokenRefresh("tiktok", OutcomeRefreshed)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	require.True(t, strings.Contains(out, `http_requests_total{method="GET",path="/healthz",status="418"}`), out)
	require.Contains(t, out, "socialbridge_token_refresh_total")
}
