package providers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// ExchangeError describe un fallo hablando con el endpoint de tokens.
// Nunca contiene tokens; Description es el texto que devolvió el proveedor.
type ExchangeError struct {
	Provider    string
	Op          string // exchange | long_lived | refresh
	Status      int    // 0 si no hubo respuesta HTTP
	Code        string
	Description string
	Err         error
}

func (e *ExchangeError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Code != "" {
		msg += ": " + e.Code
		if e.Description != "" {
			msg += " - " + e.Description
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// Rejected indica que el proveedor respondió y rechazó el pedido (code
// inválido, redirect URI distinto, refresh token revocado). Red, timeout y
// 5xx no son rechazo.
func (e *ExchangeError) Rejected() bool {
	if e.Status >= 400 && e.Status < 500 {
		return true
	}
	return e.Status > 0 && e.Status < 400 && e.Code != ""
}

// IsRejected es true si err contiene un *ExchangeError rechazado.
func IsRejected(err error) bool {
	var xe *ExchangeError
	return errors.As(err, &xe) && xe.Rejected()
}

// oauthError soporta {"error":"x","error_description":"y"} y el formato
// Graph API {"error":{"type":"OAuthException","message":"..."}}.
func oauthError(res gjson.Result) (code, desc string) {
	e := res.Get("error")
	if !e.Exists() {
		return "", ""
	}
	if e.IsObject() {
		code = e.Get("type").String()
		if code == "" {
			code = e.Get("code").String()
		}
		return code, e.Get("message").String()
	}
	return e.String(), res.Get("error_description").String()
}

// wrapOAuth2Error convierte errores de golang.org/x/oauth2 en *ExchangeError.
func wrapOAuth2Error(provider, op string, err error) error {
	xe := &ExchangeError{Provider: provider, Op: op, Err: err}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil {
			xe.Status = re.Response.StatusCode
		}
		xe.Code, xe.Description = re.ErrorCode, re.ErrorDescription
		if xe.Code == "" {
			xe.Code, xe.Description = oauthError(gjson.ParseBytes(re.Body))
		}
		// No propagar el body crudo.
		xe.Err = fmt.Errorf("token endpoint returned %s", http.StatusText(xe.Status))
	}
	return xe
}
