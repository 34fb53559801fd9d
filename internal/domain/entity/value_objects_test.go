package entity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

func TestGenerateUserID(t *testing.T) {
	a := entity.GenerateUserID()
	b := entity.GenerateUserID()

	assert.False(t, a.IsZero())
	assert.NoError(t, a.Validate())
	assert.False(t, a.Equals(b))

	parsed, err := entity.UserIDFrom(a.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(a))
}

func TestUserIDFrom(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{"valid", "3f1c7a52-5b0e-4c8e-9b55-2f0a3f6e1d4a", false, "3f1c7a52-5b0e-4c8e-9b55-2f0a3f6e1d4a"},
		{"upper case", "3F1C7A52-5B0E-4C8E-9B55-2F0A3F6E1D4A", false, "3f1c7a52-5b0e-4c8e-9b55-2f0a3f6e1d4a"},
		{"padded", "  3f1c7a52-5b0e-4c8e-9b55-2f0a3f6e1d4a ", false, "3f1c7a52-5b0e-4c8e-9b55-2f0a3f6e1d4a"},
		{"empty", "", true, ""},
		{"blank", "   ", true, ""},
		{"malformed", "not-a-uuid", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := entity.UserIDFrom(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func TestUserIDFrom_EmptyReason(t *testing.T) {
	_, err := entity.UserIDFrom("")

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, entity.FieldUserID, ve.Field)
	assert.Equal(t, "identifier is empty", ve.Reason)
}

func TestEmailAddressFrom(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{"valid", "john@doe.com", false, "john@doe.com"},
		{"upper case", "JOHN@DOE.COM", false, "john@doe.com"},
		{"padded", "  john@doe.com  ", false, "john@doe.com"},
		{"plus tag", "john+tag@doe.com", false, "john+tag@doe.com"},
		{"subdomain", "john@mail.doe.com", false, "john@mail.doe.com"},
		{"not an email", "not-an-email", true, ""},
		{"empty", "", true, ""},
		{"no domain", "john@", true, ""},
		{"no local part", "@doe.com", true, ""},
		{"double at", "john@@doe.com", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := entity.EmailAddressFrom(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, email.String())
		})
	}
}

func TestEmailAddress_EqualityAfterNormalization(t *testing.T) {
	a, err := entity.EmailAddressFrom("john@doe.com")
	require.NoError(t, err)
	b, err := entity.EmailAddressFrom(" John@Doe.com ")
	require.NoError(t, err)
	c, err := entity.EmailAddressFrom("jane@doe.com")
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.Equal(t, a, b)
	assert.False(t, a.Equals(c))
}

func TestEmailAddress_ZeroValueInvalid(t *testing.T) {
	var e entity.EmailAddress
	assert.True(t, e.IsZero())
	assert.ErrorIs(t, e.Validate(), apperror.ErrValidation)
}

func TestAgeFrom(t *testing.T) {
	tests := []struct {
		input   int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{32, false},
		{150, false},
		{151, true},
	}

	for _, tt := range tests {
		age, err := entity.AgeFrom(tt.input)
		if tt.wantErr {
			var ve *apperror.ValidationError
			require.ErrorAs(t, err, &ve, "age %d", tt.input)
			assert.Equal(t, "age must be between 0 and 150", ve.Reason)
			continue
		}
		require.NoError(t, err, "age %d", tt.input)
		assert.Equal(t, tt.input, age.Int())
	}
}

func TestFullNameFrom(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{"valid", "John Doe", false, "John Doe"},
		{"padded", "  John Doe  ", false, "John Doe"},
		{"empty", "", true, ""},
		{"blank", "   ", true, ""},
		{"max length", strings.Repeat("a", 255), false, strings.Repeat("a", 255)},
		{"too long", strings.Repeat("a", 256), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := entity.FullNameFrom(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, name.String())
		})
	}
}
