// Package metrics define las métricas Prometheus del servicio. Vive separado
// de internal/http para que services y state puedan registrar eventos sin
// ciclos de import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes usados en los labels.
const (
	OutcomeConnected         = "connected"
	OutcomeInvalidState      = "invalid_state"
	OutcomeProviderDenied    = "provider_denied"
	OutcomeMissingCode       = "missing_code"
	OutcomeExchangeFailed    = "exchange_failed"
	OutcomeStoreFailed       = "store_failed"
	OutcomeRefreshed         = "refreshed"
	OutcomeRefreshFailed     = "failed"
	OutcomeRefreshSuperseded = "superseded"
)

var (
	OAuthFlowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialbridge_oauth_flows_total",
		Help: "Callbacks OAuth procesados por proveedor y resultado",
	}, []string{"provider", "outcome"})

	TokenRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialbridge_token_refresh_total",
		Help: "Refresh de access tokens por proveedor y resultado",
	}, []string{"provider", "outcome"})

	StateEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "socialbridge_state_evictions_total",
		Help: "State tokens vencidos eliminados por el sweeper",
	})
)

// Register registra las métricas de dominio en reg (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{OAuthFlowsTotal, TokenRefreshTotal, StateEvictionsTotal} {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// RecordOAuthFlow cuenta el resultado de un callback.
func RecordOAuthFlow(provider, outcome string) {
	OAuthFlowsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordTokenRefresh cuenta el resultado de un refresh.
func RecordTokenRefresh(provider, outcome string) {
	TokenRefreshTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordStateEvictions suma entradas eliminadas por el sweeper.
func RecordStateEvictions(n int) {
	if n > 0 {
		StateEvictionsTotal.Add(float64(n))
	}
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
