package middlewares

import (
	"net/http"
	"slices"
)

// Middleware decora un http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain envuelve h con mws. El primero de la lista es el más externo:
// Chain(h, A, B) atiende A -> B -> h.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range slices.Backward(mws) {
		if mw != nil {
			h = mw(h)
		}
	}
	return h
}
