package entity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

// Field names used in validation errors. They match the transfer model's JSON
// names so the delivery adapter can report them verbatim.
const (
	FieldUserID       = "userId"
	FieldEmailAddress = "emailAddress"
	FieldFullName     = "fullName"
	FieldAge          = "age"
)

const (
	MinAge            = 0
	MaxAge            = 150
	MaxFullNameLength = 255
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// UserID identifies a user. The zero value is invalid.
type UserID struct {
	value string
}

// GenerateUserID returns a fresh random identifier.
func GenerateUserID() UserID {
	return UserID{value: uuid.NewString()}
}

// UserIDFrom parses an existing identifier.
func UserIDFrom(raw string) (UserID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UserID{}, apperror.NewValidation(FieldUserID, "identifier is empty")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return UserID{}, apperror.NewValidation(FieldUserID, "identifier is not a valid UUID")
	}
	return UserID{value: id.String()}, nil
}

func (id UserID) String() string           { return id.value }
func (id UserID) Equals(other UserID) bool { return id.value == other.value }
func (id UserID) IsZero() bool             { return id.value == "" }

// Validate re-checks the identifier invariant.
func (id UserID) Validate() error {
	if id.value == "" {
		return apperror.NewValidation(FieldUserID, "identifier is empty")
	}
	return nil
}

// EmailAddress is a normalized, well-formed email address.
type EmailAddress struct {
	value string
}

// EmailAddressFrom trims and lower-cases raw and checks its shape.
func EmailAddressFrom(raw string) (EmailAddress, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return EmailAddress{}, apperror.NewValidation(FieldEmailAddress, "email address is empty")
	}
	if !emailRegex.MatchString(value) {
		return EmailAddress{}, apperror.NewValidation(FieldEmailAddress, "email address is not well-formed")
	}
	return EmailAddress{value: value}, nil
}

func (e EmailAddress) String() string                 { return e.value }
func (e EmailAddress) Equals(other EmailAddress) bool { return e.value == other.value }
func (e EmailAddress) IsZero() bool                   { return e.value == "" }

// Validate re-checks the email invariant.
func (e EmailAddress) Validate() error {
	_, err := EmailAddressFrom(e.value)
	return err
}

// Age is a human age in years.
type Age struct {
	value int
}

// AgeFrom checks that n lies within [MinAge, MaxAge].
func AgeFrom(n int) (Age, error) {
	a := Age{value: n}
	if err := a.Validate(); err != nil {
		return Age{}, err
	}
	return a, nil
}

func (a Age) Int() int              { return a.value }
func (a Age) Equals(other Age) bool { return a.value == other.value }

// Validate re-checks the range invariant.
func (a Age) Validate() error {
	if a.value < MinAge || a.value > MaxAge {
		return apperror.NewValidation(FieldAge, "age must be between 0 and 150")
	}
	return nil
}

// FullName is a trimmed, non-empty display name.
type FullName struct {
	value string
}

// FullNameFrom trims raw and checks its length.
func FullNameFrom(raw string) (FullName, error) {
	n := FullName{value: strings.TrimSpace(raw)}
	if err := n.Validate(); err != nil {
		return FullName{}, err
	}
	return n, nil
}

func (n FullName) String() string             { return n.value }
func (n FullName) Equals(other FullName) bool { return n.value == other.value }

// Validate re-checks the name invariant.
func (n FullName) Validate() error {
	if n.value == "" {
		return apperror.NewValidation(FieldFullName, "full name is empty")
	}
	if utf8.RuneCountInString(n.value) > MaxFullNameLength {
		return apperror.NewValidation(FieldFullName, "full name exceeds 255 characters")
	}
	return nil
}
