package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

func TestUser_ChangeDetails_NegativeAge(t *testing.T) {
	email, err := EmailAddressFrom("john@doe.com")
	require.NoError(t, err)
	name, err := FullNameFrom("John Doe")
	require.NoError(t, err)
	age, err := AgeFrom(32)
	require.NoError(t, err)
	u, err := FromWithEmail(GenerateUserID(), email, name, age)
	require.NoError(t, err)

	newName, err := FullNameFrom("Jane Doe")
	require.NoError(t, err)
	invalid := Age{value: -5}

	err = u.ChangeDetails(DetailsChange{FullName: &newName, Age: &invalid})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "John Doe", u.FullName().String())
	assert.Equal(t, 32, u.Age().Int())
	assert.Empty(t, u.ListEvents())
}
