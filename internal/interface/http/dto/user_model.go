// Package dto holds the JSON transfer models of the HTTP adapter and their
// mappings to and from the domain.
package dto

import (
	"github.com/oksasatya/go-hexagonal-users/internal/domain/command"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/pkg/mapper"
)

// UserModel is the outward representation of a user.
type UserModel struct {
	UserID       string `json:"userId"`
	EmailAddress string `json:"emailAddress,omitempty"`
	FullName     string `json:"fullName"`
	Age          int    `json:"age"`
}

type CreateUserModel struct {
	FullName     string  `json:"fullName" binding:"required,fullname"`
	Age          *int    `json:"age" binding:"required,age"`
	EmailAddress *string `json:"emailAddress"`
}

// ChangeUserDetailsModel is a partial update; absent fields stay untouched.
type ChangeUserDetailsModel struct {
	EmailAddress *string `json:"emailAddress"`
	FullName     *string `json:"fullName" binding:"omitempty,fullname"`
	Age          *int    `json:"age" binding:"omitempty,age"`
}

type RegisterUserModel struct {
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	FullName     string `json:"fullName" binding:"required,fullname"`
	Age          *int   `json:"age" binding:"required,age"`
	Password     string `json:"password" binding:"required,pwd"`
}

type SignInModel struct {
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// UserToModel never fails.
func UserToModel() mapper.Mapper[entity.User, UserModel] {
	return mapper.Total(func(u *entity.User) *UserModel {
		m := &UserModel{
			UserID:   u.ID().String(),
			FullName: u.FullName().String(),
			Age:      u.Age().Int(),
		}
		if u.HasEmailAddress() {
			m.EmailAddress = u.EmailAddress().String()
		}
		return m
	})
}

// ModelToUser rebuilds a user without recording events. An empty
// emailAddress yields a user without one.
func ModelToUser() mapper.Mapper[UserModel, entity.User] {
	return mapper.Func[UserModel, entity.User](func(m *UserModel) (*entity.User, error) {
		id, err := entity.UserIDFrom(m.UserID)
		if err != nil {
			return nil, err
		}
		name, err := entity.FullNameFrom(m.FullName)
		if err != nil {
			return nil, err
		}
		age, err := entity.AgeFrom(m.Age)
		if err != nil {
			return nil, err
		}
		if m.EmailAddress == "" {
			return entity.From(id, name, age)
		}
		email, err := entity.EmailAddressFrom(m.EmailAddress)
		if err != nil {
			return nil, err
		}
		return entity.FromWithEmail(id, email, name, age)
	})
}

func CreateUserModelToCommand() mapper.Mapper[CreateUserModel, command.CreateUser] {
	return mapper.Func[CreateUserModel, command.CreateUser](func(m *CreateUserModel) (*command.CreateUser, error) {
		var age int
		if m.Age != nil {
			age = *m.Age
		}
		var email string
		if m.EmailAddress != nil {
			email = *m.EmailAddress
		}
		cmd, err := command.NewCreateUser(m.FullName, age, email)
		if err != nil {
			return nil, err
		}
		return &cmd, nil
	})
}

// ChangeUserDetailsModelToCommand binds the update to the user addressed by
// rawID.
func ChangeUserDetailsModelToCommand(rawID string) mapper.Mapper[ChangeUserDetailsModel, command.ChangeUserDetails] {
	return mapper.Func[ChangeUserDetailsModel, command.ChangeUserDetails](func(m *ChangeUserDetailsModel) (*command.ChangeUserDetails, error) {
		cmd, err := command.NewChangeUserDetails(rawID, command.DetailsPatch{
			EmailAddress: m.EmailAddress,
			FullName:     m.FullName,
			Age:          m.Age,
		})
		if err != nil {
			return nil, err
		}
		return &cmd, nil
	})
}

func RegisterUserModelToCommand() mapper.Mapper[RegisterUserModel, command.RegisterUser] {
	return mapper.Func[RegisterUserModel, command.RegisterUser](func(m *RegisterUserModel) (*command.RegisterUser, error) {
		var age int
		if m.Age != nil {
			age = *m.Age
		}
		cmd, err := command.NewRegisterUser(m.EmailAddress, m.FullName, age, m.Password)
		if err != nil {
			return nil, err
		}
		return &cmd, nil
	})
}
