// Package memory keeps users and credentials in process memory. It backs tests
// and the DB_DRIVER=memory mode.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

// UserRepository stores detached copies so callers never share state with
// the store.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byEmail map[string]string
	order   []string
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   map[string]*entity.User{},
		byEmail: map[string]string{},
	}
}

func (r *UserRepository) FindByID(_ context.Context, id entity.UserID) (*entity.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id.String()]
	if !ok {
		return nil, false, nil
	}
	return detach(u), true, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email entity.EmailAddress) (*entity.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email.String()]
	if !ok {
		return nil, false, nil
	}
	return detach(r.users[id]), true, nil
}

// ListAll returns users in insertion order.
func (r *UserRepository) ListAll(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, detach(r.users[id]))
	}
	return out, nil
}

func (r *UserRepository) Insert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := u.ID().String()
	if _, ok := r.users[id]; ok {
		return apperror.With(apperror.ErrConflict, "user %s already exists", id)
	}
	if u.HasEmailAddress() {
		if _, ok := r.byEmail[u.EmailAddress().String()]; ok {
			return apperror.With(apperror.ErrConflict, "email address %s is already in use", u.EmailAddress())
		}
		r.byEmail[u.EmailAddress().String()] = id
	}
	r.users[id] = detach(u)
	r.order = append(r.order, id)
	return nil
}

func (r *UserRepository) ChangeDetails(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := u.ID().String()
	prev, ok := r.users[id]
	if !ok {
		return nil, apperror.With(apperror.ErrNotFound, "user %s not found", id)
	}
	if u.HasEmailAddress() {
		if owner, taken := r.byEmail[u.EmailAddress().String()]; taken && owner != id {
			return nil, apperror.With(apperror.ErrConflict, "email address %s is already in use", u.EmailAddress())
		}
	}
	if prev.HasEmailAddress() {
		delete(r.byEmail, prev.EmailAddress().String())
	}
	if u.HasEmailAddress() {
		r.byEmail[u.EmailAddress().String()] = id
	}
	r.users[id] = detach(u)
	return detach(u), nil
}

func (r *UserRepository) DeleteBy(_ context.Context, id entity.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.String()]
	if !ok {
		return nil
	}
	if u.HasEmailAddress() {
		delete(r.byEmail, u.EmailAddress().String())
	}
	delete(r.users, id.String())
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id.String() })
	return nil
}

// detach rebuilds u without its pending events.
func detach(u *entity.User) *entity.User {
	var (
		out *entity.User
		err error
	)
	if u.HasEmailAddress() {
		out, err = entity.FromWithEmail(u.ID(), u.EmailAddress(), u.FullName(), u.Age())
	} else {
		out, err = entity.From(u.ID(), u.FullName(), u.Age())
	}
	if err != nil {
		// stored users are valid by construction
		panic(err)
	}
	return out
}
