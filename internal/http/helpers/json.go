package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
)

const maxJSONBody = 32 << 10 // 32KB

// ReadStrictJSON decodifica el body en dst; en error ya respondió.
func ReadStrictJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if ct != "" && !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail("Content-Type: application/json requerido"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "json inválido"
		if errors.Is(err, io.EOF) {
			msg = "body vacío"
		}
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail(msg))
		return false
	}
	if dec.More() {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail("sobran datos en el body"))
		return false
	}
	return true
}

// WriteJSON escribe v con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
