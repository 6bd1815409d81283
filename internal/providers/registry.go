package providers

import (
	"sort"
	"strings"
	"sync"
)

// Registry resuelve proveedores habilitados por nombre.
// Distingue nombres desconocidos de proveedores conocidos pero deshabilitados.
type Registry struct {
	mu     sync.RWMutex
	known  map[string]struct{}
	byName map[string]Provider
}

// NewRegistry crea un registry que reconoce los nombres dados.
func NewRegistry(known ...string) *Registry {
	r := &Registry{
		known:  make(map[string]struct{}, len(known)),
		byName: make(map[string]Provider),
	}
	for _, n := range known {
		r.known[normalize(n)] = struct{}{}
	}
	return r
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Register habilita p. Reemplaza uno previo con el mismo nombre.
func (r *Registry) Register(p Provider) {
	name := normalize(p.Name())
	r.mu.Lock()
	r.known[name] = struct{}{}
	r.byName[name] = p
	r.mu.Unlock()
}

// Get devuelve el proveedor habilitado, ErrProviderUnknown o ErrProviderDisabled.
func (r *Registry) Get(name string) (Provider, error) {
	n := normalize(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byName[n]; ok {
		return p, nil
	}
	if _, ok := r.known[n]; ok {
		return nil, ErrProviderDisabled
	}
	return nil, ErrProviderUnknown
}

// Names devuelve los proveedores habilitados, ordenados.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
