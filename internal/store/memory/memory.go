// Package memory implementa los repositorios en memoria (desarrollo y tests).
// No es durable: un reinicio pierde usuarios y credenciales.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

type credKey struct{ userID, provider string }

// Store guarda usuarios y credenciales en maps protegidos por un RWMutex.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	users   map[string]repository.User
	byEmail map[string]string
	creds   map[credKey]repository.Credential
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		now:     time.Now,
		users:   make(map[string]repository.User),
		byEmail: make(map[string]string),
		creds:   make(map[credKey]repository.Credential),
	}
}

// ====================== USERS ======================

func (s *Store) CreateUser(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = repository.RoleUser
	}
	if !role.Valid() {
		return nil, repository.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, repository.ErrConflict
	}
	now := s.now().UTC()
	u := repository.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(in.Email),
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	delete(s.byEmail, strings.ToLower(u.Email))
	for k := range s.creds {
		if k.userID == id {
			delete(s.creds, k)
		}
	}
	return nil
}

// ====================== CREDENTIALS ======================

func cloneCredential(c repository.Credential) repository.Credential {
	c.Scopes = append([]string(nil), c.Scopes...)
	if len(c.AccountIDs) == 0 {
		c.AccountIDs = nil
	} else {
		m := make(map[string]string, len(c.AccountIDs))
		for k, v := range c.AccountIDs {
			m[k] = v
		}
		c.AccountIDs = m
	}
	return c
}

func (s *Store) Get(ctx context.Context, userID, provider string) (*repository.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[credKey{userID, provider}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneCredential(c)
	return &out, nil
}

func (s *Store) Upsert(ctx context.Context, userID, provider string, cred repository.Credential) error {
	if userID == "" || provider == "" || cred.AccessToken == "" {
		return repository.ErrInvalidInput
	}
	c := cloneCredential(cred)
	c.UserID, c.Provider = userID, provider

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	k := credKey{userID, provider}
	if prev, ok := s.creds[k]; ok {
		c.CreatedAt = prev.CreatedAt
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.creds[k] = c
	return nil
}

func (s *Store) Clear(ctx context.Context, userID, provider string) error {
	s.mu.Lock()
	delete(s.creds, credKey{userID, provider})
	s.mu.Unlock()
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*repository.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*repository.Credential
	for k, c := range s.creds {
		if k.userID == userID {
			cc := cloneCredential(c)
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}
