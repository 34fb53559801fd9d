package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

func TestKindsDistinct(t *testing.T) {
	kinds := []apperror.Kind{
		apperror.ErrValidation,
		apperror.ErrNotFound,
		apperror.ErrConflict,
		apperror.ErrPersistence,
		apperror.ErrUnauthorized,
	}
	seen := map[apperror.Kind]bool{}
	for i, k := range kinds {
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("connection refused")

	e1 := apperror.With(apperror.ErrNotFound, "user %s not found", "42")
	require.Equal(t, "user 42 not found", e1.Error())

	e2 := apperror.Wrap(apperror.ErrPersistence, base, "inserting user")
	require.Equal(t, "inserting user: connection refused", e2.Error())
	require.Equal(t, "inserting user", e2.Message())
	require.Equal(t, apperror.ErrPersistence, e2.Kind())
}

func TestIsMatchesKindAndCause(t *testing.T) {
	base := errors.New("root cause")
	e := apperror.Wrap(apperror.ErrPersistence, base, "reading")

	require.ErrorIs(t, e, apperror.ErrPersistence)
	require.ErrorIs(t, e, base)
	require.NotErrorIs(t, e, apperror.ErrNotFound)

	wrapped := fmt.Errorf("service: %w", e)
	require.ErrorIs(t, wrapped, apperror.ErrPersistence)
}

func TestValidationError(t *testing.T) {
	err := apperror.NewValidation("age", "age must be between 0 and 150")

	require.Equal(t, "age: age must be between 0 and 150", err.Error())
	require.ErrorIs(t, err, apperror.ErrValidation)
	require.NotErrorIs(t, err, apperror.ErrConflict)

	var ve *apperror.ValidationError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &ve)
	require.Equal(t, "age", ve.Field)
}

func TestValidationDetails(t *testing.T) {
	joined := errors.Join(
		apperror.NewValidation("age", "age must be between 0 and 150"),
		nil,
		apperror.NewValidation("fullName", "full name is empty"),
	)

	require.ErrorIs(t, joined, apperror.ErrValidation)
	require.Equal(t, map[string]string{
		"age":      "age must be between 0 and 150",
		"fullName": "full name is empty",
	}, apperror.ValidationDetails(joined))

	require.Nil(t, apperror.ValidationDetails(nil))
	require.Nil(t, apperror.ValidationDetails(errors.New("boom")))
}
