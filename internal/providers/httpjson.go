package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
)

const maxResponseSize = 1 << 20

// metadataBackOff se reemplaza en tests.
var metadataBackOff = func() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 200 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	return eb
}

// TokenRequest ejecuta req contra un endpoint de tokens y devuelve el JSON.
// Cualquier fallo (red, status, error OAuth en el body, falta de
// access_token) sale como *ExchangeError.
func TokenRequest(hc *http.Client, req *http.Request, provider, op string) (gjson.Result, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return gjson.Result{}, &ExchangeError{Provider: provider, Op: op, Err: RedactURLError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return gjson.Result{}, &ExchangeError{Provider: provider, Op: op, Status: resp.StatusCode, Err: err}
	}
	res := gjson.ParseBytes(body)
	code, desc := oauthError(res)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || code != "" {
		return gjson.Result{}, &ExchangeError{
			Provider: provider, Op: op, Status: resp.StatusCode,
			Code: code, Description: desc,
			Err: fmt.Errorf("token endpoint returned %d", resp.StatusCode),
		}
	}
	if res.Get("access_token").String() == "" {
		return gjson.Result{}, &ExchangeError{
			Provider: provider, Op: op, Status: resp.StatusCode,
			Err: errors.New("no access_token in response"),
		}
	}
	return res, nil
}

// RedactURLError quita query y fragmento de la URL de un *url.Error. Los
// endpoints de Graph/Instagram llevan client_secret y tokens en la query y el
// texto del error termina en los logs.
func RedactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: stripQuery(ue.URL), Err: ue.Err}
}

func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// ExpiryFrom lee expires_in (segundos). Sin valor positivo devuelve zero.
func ExpiryFrom(res gjson.Result, now time.Time) time.Time {
	if secs := res.Get("expires_in").Int(); secs > 0 {
		return now.Add(time.Duration(secs) * time.Second)
	}
	return time.Time{}
}

// HTTPStatusError es un status no exitoso de una API de proveedor.
type HTTPStatusError struct {
	Status  int
	Message string
}

func (e *HTTPStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider api returned %d", e.Status)
	}
	return fmt.Sprintf("provider api returned %d: %s", e.Status, e.Message)
}

// IsUnauthorized es true si la API rechazó el access token (401/403).
func IsUnauthorized(err error) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden)
}

// GetJSON hace un GET autenticado con Bearer y devuelve el cuerpo parseado.
// Reintenta con backoff exponencial errores de red y 5xx; un 4xx es
// permanente. Pensado para metadata, nunca para el canje de tokens.
func GetJSON(ctx context.Context, hc *http.Client, rawURL, accessToken string, tries uint) (gjson.Result, error) {
	if tries == 0 {
		tries = DefaultMetadataTries
	}
	op := func() (gjson.Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return gjson.Result{}, backoff.Permanent(RedactURLError(err))
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			return gjson.Result{}, RedactURLError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return gjson.Result{}, err
		}
		res := gjson.ParseBytes(body)
		if resp.StatusCode >= 300 {
			_, msg := oauthError(res)
			serr := &HTTPStatusError{Status: resp.StatusCode, Message: msg}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return gjson.Result{}, serr
			}
			return gjson.Result{}, backoff.Permanent(serr)
		}
		return res, nil
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(metadataBackOff()),
		backoff.WithMaxTries(tries),
	)
}
