package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

func TestWhatsApp_Metadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/me/businesses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"biz_1"}]}`))
	})
	mux.HandleFunc("/v22.0/biz_1/owned_whatsapp_business_accounts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"waba_7"}]}`))
	})
	mux.HandleFunc("/v22.0/waba_7/phone_numbers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := New(config.ProviderConfig{APIBaseURL: srv.URL, APIVersion: "v22.0"},
		providers.Options{HTTPClient: srv.Client(), Timeout: time.Second})
	require.Equal(t, config.ProviderWhatsApp, p.Name())

	ids, err := p.FetchMetadata(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"business_id": "biz_1", "waba_id": "waba_7"}, ids)
}
