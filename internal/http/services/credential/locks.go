package credential

import "sync"

// Locks serializa las escrituras de una misma credencial (user, provider)
// entre el refresh, el callback OAuth y el disconnect. El valor cero sirve.
// Es local al proceso; con varias réplicas el refresh además compara la fila
// antes de escribir.
type Locks struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks { return &Locks{} }

// Lock toma el lock de la clave y devuelve la función que lo libera.
func (l *Locks) Lock(userID, provider string) (unlock func()) {
	k := flightKey(userID, provider)

	l.mu.Lock()
	if l.keys == nil {
		l.keys = make(map[string]*keyLock)
	}
	kl := l.keys[k]
	if kl == nil {
		kl = &keyLock{}
		l.keys[k] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		if kl.refs--; kl.refs == 0 {
			delete(l.keys, k)
		}
		l.mu.Unlock()
	}
}

// held devuelve cuántas claves tienen lock tomado o en espera (tests).
func (l *Locks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
