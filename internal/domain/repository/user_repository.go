package repository

import (
	"context"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
)

// UserRepository defines the persistence operations over the user aggregate.
// Lookups report absence through the bool result; storage failures are
// returned as apperror.ErrPersistence.
type UserRepository interface {
	FindByID(ctx context.Context, id entity.UserID) (*entity.User, bool, error)
	FindByEmail(ctx context.Context, email entity.EmailAddress) (*entity.User, bool, error)
	ListAll(ctx context.Context) ([]*entity.User, error)
	// Insert fails with apperror.ErrConflict when the id or email is taken.
	Insert(ctx context.Context, u *entity.User) error
	// ChangeDetails persists the current field values of u and fails with
	// apperror.ErrNotFound when no record exists.
	ChangeDetails(ctx context.Context, u *entity.User) (*entity.User, error)
	// DeleteBy is a no-op for unknown ids.
	DeleteBy(ctx context.Context, id entity.UserID) error
}

// CredentialRepository stores password hashes for registered users.
type CredentialRepository interface {
	SavePassword(ctx context.Context, id entity.UserID, hash string) error
	FindPasswordHash(ctx context.Context, id entity.UserID) (string, bool, error)
}
