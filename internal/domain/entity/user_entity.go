package entity

import (
	"errors"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

// User is the aggregate root for the user domain. Its fields are valid at all
// times; every mutation goes through a behaviour method that validates the
// whole candidate state before committing it.
//
// The email address may be absent for users built with From.
type User struct {
	event.Recorder
	id       UserID
	email    EmailAddress
	fullName FullName
	age      Age
}

var _ event.AggregateRoot = (*User)(nil)

// From builds a user without an email address. No event is recorded.
func From(id UserID, fullName FullName, age Age) (*User, error) {
	u := &User{id: id, fullName: fullName, age: age}
	if err := u.validate(false); err != nil {
		return nil, err
	}
	return u, nil
}

// FromWithEmail builds a user with every attribute. No event is recorded.
func FromWithEmail(id UserID, email EmailAddress, fullName FullName, age Age) (*User, error) {
	u := &User{id: id, email: email, fullName: fullName, age: age}
	if err := u.validate(true); err != nil {
		return nil, err
	}
	return u, nil
}

// Register builds a brand-new user and records event.UserCreated.
func Register(id UserID, email EmailAddress, fullName FullName, age Age) (*User, error) {
	u, err := FromWithEmail(id, email, fullName, age)
	if err != nil {
		return nil, err
	}
	u.Record(event.New(event.UserCreated, id.String(), map[string]event.Change{
		FieldEmailAddress: {Current: email.String()},
		FieldFullName:     {Current: fullName.String()},
		FieldAge:          {Current: age.Int()},
	}))
	return u, nil
}

func (u *User) ID() UserID                 { return u.id }
func (u *User) EmailAddress() EmailAddress { return u.email }
func (u *User) HasEmailAddress() bool      { return !u.email.IsZero() }
func (u *User) FullName() FullName         { return u.fullName }
func (u *User) Age() Age                   { return u.age }

// Equals compares identities.
func (u *User) Equals(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.id.Equals(other.id)
}

// DetailsChange is a partial update. Nil fields are left untouched.
type DetailsChange struct {
	EmailAddress *EmailAddress
	FullName     *FullName
	Age          *Age
}

// IsEmpty reports whether no field is supplied.
func (c DetailsChange) IsEmpty() bool {
	return c.EmailAddress == nil && c.FullName == nil && c.Age == nil
}

// ChangeDetails applies c atomically. On a validation error the user is left
// untouched. When at least one supplied value differs from the current state a
// single event.UserDetailsChanged is recorded listing the differing fields.
func (u *User) ChangeDetails(c DetailsChange) error {
	next := *u
	changes := map[string]event.Change{}

	if c.EmailAddress != nil {
		if c.EmailAddress.IsZero() {
			return c.EmailAddress.Validate()
		}
		if !next.email.Equals(*c.EmailAddress) {
			changes[FieldEmailAddress] = event.Change{Previous: next.email.String(), Current: c.EmailAddress.String()}
			next.email = *c.EmailAddress
		}
	}
	if c.FullName != nil {
		if !next.fullName.Equals(*c.FullName) {
			changes[FieldFullName] = event.Change{Previous: next.fullName.String(), Current: c.FullName.String()}
			next.fullName = *c.FullName
		}
	}
	if c.Age != nil {
		if !next.age.Equals(*c.Age) {
			changes[FieldAge] = event.Change{Previous: next.age.Int(), Current: c.Age.Int()}
			next.age = *c.Age
		}
	}

	if err := next.validate(false); err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	u.email, u.fullName, u.age = next.email, next.fullName, next.age
	u.Record(event.New(event.UserDetailsChanged, u.id.String(), changes))
	return nil
}

// MarkDeleted records event.UserDeleted carrying the last known details as
// previous values. Removing the user from storage is the repository's job.
func (u *User) MarkDeleted() {
	changes := map[string]event.Change{
		FieldFullName: {Previous: u.fullName.String()},
		FieldAge:      {Previous: u.age.Int()},
	}
	if !u.email.IsZero() {
		changes[FieldEmailAddress] = event.Change{Previous: u.email.String()}
	}
	u.Record(event.New(event.UserDeleted, u.id.String(), changes))
}

func (u *User) validate(requireEmail bool) error {
	checks := []error{u.id.Validate()}
	if requireEmail || !u.email.IsZero() {
		checks = append(checks, u.email.Validate())
	}
	checks = append(checks, u.fullName.Validate(), u.age.Validate())

	var failed []error
	for _, err := range checks {
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
