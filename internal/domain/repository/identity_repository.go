package repository

import (
	"context"
	"errors"

	"github.com/pasarku/pasarku/internal/domain/entity"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrIdentityNotFound is returned by lookups when no identity matches.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository is the credential store behind signup and login.
type IdentityRepository interface {
	Create(ctx context.Context, id *entity.Identity) error
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
}
