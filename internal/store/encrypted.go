package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/security/secretbox"
)

// encryptedCredentials cifra AccessToken y RefreshToken antes de delegar.
type encryptedCredentials struct {
	next repository.CredentialRepository
	box  *secretbox.Box
}

// NewEncryptedCredentials decora un CredentialRepository con cifrado en reposo.
func NewEncryptedCredentials(next repository.CredentialRepository, box *secretbox.Box) repository.CredentialRepository {
	return &encryptedCredentials{next: next, box: box}
}

func (e *encryptedCredentials) seal(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return e.box.Encrypt(s)
}

func (e *encryptedCredentials) open(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return e.box.Decrypt(s)
}

func (e *encryptedCredentials) decrypt(c *repository.Credential) error {
	at, err := e.open(c.AccessToken)
	if err != nil {
		return fmt.Errorf("store: decrypt access token (%s): %w", c.Provider, err)
	}
	rt, err := e.open(c.RefreshToken)
	if err != nil {
		return fmt.Errorf("store: decrypt refresh token (%s): %w", c.Provider, err)
	}
	c.AccessToken, c.RefreshToken = at, rt
	return nil
}

func (e *encryptedCredentials) Get(ctx context.Context, userID, provider string) (*repository.Credential, error) {
	c, err := e.next.Get(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	if err := e.decrypt(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *encryptedCredentials) Upsert(ctx context.Context, userID, provider string, cred repository.Credential) error {
	var err error
	if cred.AccessToken, err = e.seal(cred.AccessToken); err != nil {
		return fmt.Errorf("store: encrypt access token: %w", err)
	}
	if cred.RefreshToken, err = e.seal(cred.RefreshToken); err != nil {
		return fmt.Errorf("store: encrypt refresh token: %w", err)
	}
	return e.next.Upsert(ctx, userID, provider, cred)
}

func (e *encryptedCredentials) Clear(ctx context.Context, userID, provider string) error {
	return e.next.Clear(ctx, userID, provider)
}

func (e *encryptedCredentials) ListByUser(ctx context.Context, userID string) ([]*repository.Credential, error) {
	list, err := e.next.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if err := e.decrypt(c); err != nil {
			return nil, err
		}
	}
	return list, nil
}
