package repository

import (
	"context"
	"time"
)

// Role es el rol de un usuario de la aplicación.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid indica si el rol es conocido.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// User es un usuario de la aplicación (no del proveedor).
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// CreateUser crea un usuario. ErrConflict si el email ya existe.
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)

	// GetUserByID busca por ID. ErrNotFound si no existe.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail busca por email (case-insensitive). ErrNotFound si no existe.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// DeleteUser elimina el usuario y sus credenciales.
	DeleteUser(ctx context.Context, id string) error
}
