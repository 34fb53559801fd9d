// Package command holds the validated intents accepted by the application
// layer. Constructors parse raw primitives into value objects and report every
// invalid field at once.
package command

import (
	"errors"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

// CreateUser asks for a new user. The email address is optional; when absent
// the use case derives one.
type CreateUser struct {
	fullName entity.FullName
	age      entity.Age
	email    entity.EmailAddress
}

// NewCreateUser validates the raw input. An empty email means "derive one".
func NewCreateUser(fullName string, age int, email string) (CreateUser, error) {
	name, nameErr := entity.FullNameFrom(fullName)
	a, ageErr := entity.AgeFrom(age)
	var (
		addr    entity.EmailAddress
		mailErr error
	)
	if email != "" {
		addr, mailErr = entity.EmailAddressFrom(email)
	}
	if err := joinValidation(nameErr, ageErr, mailErr); err != nil {
		return CreateUser{}, err
	}
	return CreateUser{fullName: name, age: a, email: addr}, nil
}

func (c CreateUser) FullName() entity.FullName { return c.fullName }
func (c CreateUser) Age() entity.Age           { return c.age }

// EmailAddress returns the requested address and whether one was given.
func (c CreateUser) EmailAddress() (entity.EmailAddress, bool) {
	return c.email, !c.email.IsZero()
}

// DetailsPatch is the raw partial update received from the outside.
type DetailsPatch struct {
	EmailAddress *string
	FullName     *string
	Age          *int
}

// ChangeUserDetails targets one user with a partial update.
type ChangeUserDetails struct {
	id       entity.UserID
	email    *entity.EmailAddress
	fullName *entity.FullName
	age      *entity.Age
}

// NewChangeUserDetails parses the raw identifier and every supplied field.
func NewChangeUserDetails(rawID string, patch DetailsPatch) (ChangeUserDetails, error) {
	var (
		cmd  ChangeUserDetails
		errs []error
	)
	id, err := entity.UserIDFrom(rawID)
	errs = append(errs, err)
	cmd.id = id

	if patch.EmailAddress != nil {
		e, err := entity.EmailAddressFrom(*patch.EmailAddress)
		errs = append(errs, err)
		cmd.email = &e
	}
	if patch.FullName != nil {
		n, err := entity.FullNameFrom(*patch.FullName)
		errs = append(errs, err)
		cmd.fullName = &n
	}
	if patch.Age != nil {
		a, err := entity.AgeFrom(*patch.Age)
		errs = append(errs, err)
		cmd.age = &a
	}
	if err := joinValidation(errs...); err != nil {
		return ChangeUserDetails{}, err
	}
	return cmd, nil
}

func (c ChangeUserDetails) ID() entity.UserID { return c.id }

// Details returns the update to hand to User.ChangeDetails. The pointers are
// fresh copies.
func (c ChangeUserDetails) Details() entity.DetailsChange {
	var d entity.DetailsChange
	if c.email != nil {
		e := *c.email
		d.EmailAddress = &e
	}
	if c.fullName != nil {
		n := *c.fullName
		d.FullName = &n
	}
	if c.age != nil {
		a := *c.age
		d.Age = &a
	}
	return d
}

func joinValidation(errs ...error) error {
	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	switch len(failed) {
	case 0:
		return nil
	case 1:
		return failed[0]
	default:
		return errors.Join(failed...)
	}
}

// password bounds; bcrypt ignores bytes past 72
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

const FieldPassword = "password"

// RegisterUser asks for a new user with sign-in credentials.
type RegisterUser struct {
	email    entity.EmailAddress
	fullName entity.FullName
	age      entity.Age
	password string
}

// NewRegisterUser validates the raw registration input.
func NewRegisterUser(email, fullName string, age int, password string) (RegisterUser, error) {
	addr, mailErr := entity.EmailAddressFrom(email)
	name, nameErr := entity.FullNameFrom(fullName)
	a, ageErr := entity.AgeFrom(age)
	var pwdErr error
	switch {
	case len(password) < MinPasswordLength:
		pwdErr = apperror.NewValidation(FieldPassword, "password must be at least 8 characters")
	case len(password) > MaxPasswordLength:
		pwdErr = apperror.NewValidation(FieldPassword, "password must be at most 72 bytes")
	}
	if err := joinValidation(mailErr, nameErr, ageErr, pwdErr); err != nil {
		return RegisterUser{}, err
	}
	return RegisterUser{email: addr, fullName: name, age: a, password: password}, nil
}

func (c RegisterUser) EmailAddress() entity.EmailAddress { return c.email }
func (c RegisterUser) FullName() entity.FullName         { return c.fullName }
func (c RegisterUser) Age() entity.Age                   { return c.age }
func (c RegisterUser) Password() string                  { return c.password }
