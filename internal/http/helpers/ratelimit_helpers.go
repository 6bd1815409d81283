package helpers

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/rate"
)

// LoginRateConfig es el límite semántico por (ip, email).
type LoginRateConfig struct {
	Limit  int
	Window time.Duration
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func setRateHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time, retryAfter time.Duration) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
}

// enforceWithKey devuelve false si ya respondió 429.
// Fail-open si el limiter falta, la config es inválida o el backend falla.
func enforceWithKey(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, limit int, window time.Duration, key string) bool {
	if lim == nil || limit <= 0 || window <= 0 {
		return true
	}

	res, err := lim.AllowWithLimits(r.Context(), key, limit, window)
	if err != nil {
		logger.From(r.Context()).Warn("rate limiter error", logger.Op("rate_limit"), logger.Err(err))
		return true
	}

	resetAt := time.Now().UTC().Add(res.WindowTTL)
	if res.Allowed {
		setRateHeaders(w, limit, res.Remaining, resetAt, 0)
		return true
	}

	retryAfter := res.RetryAfter
	if retryAfter <= 0 {
		retryAfter = window
	}
	setRateHeaders(w, limit, 0, resetAt, retryAfter)
	httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
	return false
}

// EnforceLoginLimit aplica rate limit semántico para el login de la aplicación.
func EnforceLoginLimit(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg LoginRateConfig, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	key := fmt.Sprintf("login:%s:%s", clientIP(r), email)
	return enforceWithKey(w, r, lim, cfg.Limit, cfg.Window, key)
}
