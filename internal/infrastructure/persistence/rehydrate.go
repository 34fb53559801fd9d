// Package persistence holds the row mapping shared by the storage adapters.
package persistence

import (
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
	"github.com/oksasatya/go-hexagonal-users/pkg/mapper"
)

// UserRow is a user as stored: primitives, with a nullable email.
type UserRow struct {
	ID       string
	Email    *string
	FullName string
	Age      int
}

// RowToUser turns a stored row back into a user without recording events.
// Rows that no longer satisfy the domain rules are reported as
// apperror.ErrPersistence only; the validation failure is kept in the message.
var RowToUser mapper.Mapper[UserRow, entity.User] = mapper.Func[UserRow, entity.User](rowToUser)

func rowToUser(row *UserRow) (*entity.User, error) {
	u, err := buildUser(row)
	if err != nil {
		return nil, apperror.With(apperror.ErrPersistence, "stored user %q is invalid: %s", row.ID, err)
	}
	return u, nil
}

func buildUser(row *UserRow) (*entity.User, error) {
	id, err := entity.UserIDFrom(row.ID)
	if err != nil {
		return nil, err
	}
	name, err := entity.FullNameFrom(row.FullName)
	if err != nil {
		return nil, err
	}
	age, err := entity.AgeFrom(row.Age)
	if err != nil {
		return nil, err
	}
	if row.Email == nil {
		return entity.From(id, name, age)
	}
	email, err := entity.EmailAddressFrom(*row.Email)
	if err != nil {
		return nil, err
	}
	return entity.FromWithEmail(id, email, name, age)
}

// Rehydrate maps one stored row through RowToUser.
func Rehydrate(rawID string, rawEmail *string, rawName string, rawAge int) (*entity.User, error) {
	return RowToUser.Apply(&UserRow{ID: rawID, Email: rawEmail, FullName: rawName, Age: rawAge})
}

// UserToRow is the inverse of RowToUser.
var UserToRow mapper.Mapper[entity.User, UserRow] = mapper.Total(func(u *entity.User) *UserRow {
	return &UserRow{
		ID:       u.ID().String(),
		Email:    NullableEmail(u),
		FullName: u.FullName().String(),
		Age:      u.Age().Int(),
	}
})

// NullableEmail returns nil for users without an email address.
func NullableEmail(u *entity.User) *string {
	if !u.HasEmailAddress() {
		return nil
	}
	s := u.EmailAddress().String()
	return &s
}
