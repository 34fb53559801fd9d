package application

import (
	"context"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/command"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

// UserCreation creates users.
type UserCreation interface {
	// CreateBy fails with apperror.ErrConflict when the email address is taken.
	CreateBy(ctx context.Context, cmd command.CreateUser) (*entity.User, error)
}

// UserDisplay reads users. A false bool means "not found", which is not an
// error.
type UserDisplay interface {
	DisplayAll(ctx context.Context) ([]*entity.User, error)
	DisplayByID(ctx context.Context, id entity.UserID) (*entity.User, bool, error)
	DisplayByEmail(ctx context.Context, email entity.EmailAddress) (*entity.User, bool, error)
}

// UserDeletion deletes users. Deleting an unknown id succeeds.
type UserDeletion interface {
	DeleteBy(ctx context.Context, id entity.UserID) error
}

// UserDetailsModification applies partial updates.
type UserDetailsModification interface {
	// ChangeBy fails with apperror.ErrNotFound when the id does not resolve.
	ChangeBy(ctx context.Context, cmd command.ChangeUserDetails) (*entity.User, error)
}

// UserSearch runs free-text queries over the search index.
type UserSearch interface {
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// UserRegistration creates users that can sign in.
type UserRegistration interface {
	Register(ctx context.Context, cmd command.RegisterUser) (*entity.User, error)
}

// UserSignIn authenticates users and manages their sessions.
type UserSignIn interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	SignOut(ctx context.Context, userID string) error
}

// SessionRevocation ends the active session of a user.
type SessionRevocation interface {
	SignOut(ctx context.Context, userID string) error
}

// EventPublishing hands domain events to the outside world in order.
type EventPublishing interface {
	Publish(ctx context.Context, events []event.DomainEvent) error
}

// Notification is a message addressed to a user.
type Notification struct {
	To       string
	Template string
	Data     map[string]any
}

// NotificationSending delivers notifications.
type NotificationSending interface {
	Send(ctx context.Context, n Notification) error
}

// UserIndexing mirrors users into a search index.
type UserIndexing interface {
	Upsert(ctx context.Context, id string, fields map[string]any) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}
