package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/command"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	repo "github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

// RegistrationService creates users together with their password hash.
type RegistrationService struct {
	Users       repo.UserRepository
	Credentials repo.CredentialRepository
	Events      EventPublishing
	Logger      *logrus.Logger
}

var _ UserRegistration = (*RegistrationService)(nil)

func NewRegistrationService(users repo.UserRepository, creds repo.CredentialRepository, events EventPublishing, logger *logrus.Logger) *RegistrationService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RegistrationService{Users: users, Credentials: creds, Events: events, Logger: logger}
}

// Register fails with apperror.ErrConflict when the email address is taken.
// When the credentials cannot be stored the inserted user is removed again.
func (s *RegistrationService) Register(ctx context.Context, cmd command.RegisterUser) (*entity.User, error) {
	email := cmd.EmailAddress()
	if _, found, err := s.Users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if found {
		return nil, apperror.With(apperror.ErrConflict, "email address %s is already in use", email)
	}

	hash, err := helpers.HashPassword(cmd.Password())
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "hash password")
	}

	u, err := entity.Register(entity.GenerateUserID(), email, cmd.FullName(), cmd.Age())
	if err != nil {
		return nil, err
	}
	if err := s.Users.Insert(ctx, u); err != nil {
		return nil, err
	}
	if err := s.Credentials.SavePassword(ctx, u.ID(), hash); err != nil {
		log := s.Logger.WithError(err).WithField("user_id", u.ID().String())
		if delErr := s.Users.DeleteBy(ctx, u.ID()); delErr != nil {
			log = log.WithField("rollback_error", delErr.Error())
		}
		log.Error("save credentials failed")
		return nil, err
	}
	usersCreated.Add(1)
	s.Logger.WithField("user_id", u.ID().String()).Info("user registered")

	drainEvents(ctx, s.Events, s.Logger, u)
	return u, nil
}
