// Package repotest holds the behaviour every repository adapter must share.
// Adapter tests call the Run functions with a constructor for a fresh store.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

// NewUser builds a valid user with an email address.
func NewUser(t *testing.T, email, name string, age int) *entity.User {
	t.Helper()
	e, err := entity.EmailAddressFrom(email)
	require.NoError(t, err)
	n, err := entity.FullNameFrom(name)
	require.NoError(t, err)
	a, err := entity.AgeFrom(age)
	require.NoError(t, err)
	u, err := entity.Register(entity.GenerateUserID(), e, n, a)
	require.NoError(t, err)
	return u
}

// RunUserRepository exercises a UserRepository implementation.
func RunUserRepository(t *testing.T, newRepo func(t *testing.T) repository.UserRepository) {
	ctx := context.Background()

	t.Run("insert then find", func(t *testing.T) {
		r := newRepo(t)
		u := NewUser(t, "john@doe.com", "John Doe", 32)
		require.NoError(t, r.Insert(ctx, u))

		got, found, err := r.FindByID(ctx, u.ID())
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, got.Equals(u))
		assert.Equal(t, "john@doe.com", got.EmailAddress().String())
		assert.Equal(t, "John Doe", got.FullName().String())
		assert.Equal(t, 32, got.Age().Int())
		assert.Empty(t, got.ListEvents())

		got, found, err = r.FindByEmail(ctx, u.EmailAddress())
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, got.Equals(u))
	})

	t.Run("absent", func(t *testing.T) {
		r := newRepo(t)
		got, found, err := r.FindByID(ctx, entity.GenerateUserID())
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)

		e, _ := entity.EmailAddressFrom("nobody@doe.com")
		_, found, err = r.FindByEmail(ctx, e)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("list all", func(t *testing.T) {
		r := newRepo(t)
		all, err := r.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, r.Insert(ctx, NewUser(t, "a@doe.com", "A Doe", 1)))
		require.NoError(t, r.Insert(ctx, NewUser(t, "b@doe.com", "B Doe", 2)))
		all, err = r.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Insert(ctx, NewUser(t, "john@doe.com", "John Doe", 32)))
		err := r.Insert(ctx, NewUser(t, "john@doe.com", "Johnny Doe", 33))
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("change details", func(t *testing.T) {
		r := newRepo(t)
		u := NewUser(t, "john@doe.com", "John Doe", 32)
		require.NoError(t, r.Insert(ctx, u))

		email, _ := entity.EmailAddressFrom("jane@doe.com")
		name, _ := entity.FullNameFrom("Jane Doe")
		require.NoError(t, u.ChangeDetails(entity.DetailsChange{EmailAddress: &email, FullName: &name}))

		saved, err := r.ChangeDetails(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, "jane@doe.com", saved.EmailAddress().String())
		assert.Equal(t, "Jane Doe", saved.FullName().String())
		assert.Equal(t, 32, saved.Age().Int())

		_, found, err := r.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, found)
		old, _ := entity.EmailAddressFrom("john@doe.com")
		_, found, err = r.FindByEmail(ctx, old)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("change details of unknown user", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.ChangeDetails(ctx, NewUser(t, "john@doe.com", "John Doe", 32))
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		u := NewUser(t, "john@doe.com", "John Doe", 32)
		require.NoError(t, r.Insert(ctx, u))

		require.NoError(t, r.DeleteBy(ctx, u.ID()))
		require.NoError(t, r.DeleteBy(ctx, u.ID()))

		_, found, err := r.FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.False(t, found)

		// the address is free again
		require.NoError(t, r.Insert(ctx, NewUser(t, "john@doe.com", "John Doe", 32)))
	})
}

// RunCredentialRepository exercises a CredentialRepository implementation.
// insert stores the owning user first when the backend enforces it.
func RunCredentialRepository(t *testing.T, newRepo func(t *testing.T) (repository.CredentialRepository, func(*entity.User))) {
	ctx := context.Background()

	r, insert := newRepo(t)
	u := NewUser(t, "john@doe.com", "John Doe", 32)
	insert(u)

	_, found, err := r.FindPasswordHash(ctx, u.ID())
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, r.SavePassword(ctx, u.ID(), "hash-1"))
	require.NoError(t, r.SavePassword(ctx, u.ID(), "hash-2"))

	hash, found, err := r.FindPasswordHash(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hash-2", hash)
}
