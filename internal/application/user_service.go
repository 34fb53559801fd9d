package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/command"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	repo "github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
)

// DefaultEmailDomain is used for derived addresses when none is configured.
const DefaultEmailDomain = "users.local"

// UserService implements the user management use cases.
type UserService struct {
	Repo        repo.UserRepository
	Events      EventPublishing
	Index       UserIndexing
	Logger      *logrus.Logger
	EmailDomain string
	Sessions    SessionRevocation // optional; ends the session of a deleted user
}

var (
	_ UserCreation            = (*UserService)(nil)
	_ UserDisplay             = (*UserService)(nil)
	_ UserDeletion            = (*UserService)(nil)
	_ UserDetailsModification = (*UserService)(nil)
	_ UserSearch              = (*UserService)(nil)
)

func NewUserService(repo repo.UserRepository, events EventPublishing, index UserIndexing, logger *logrus.Logger, emailDomain string) *UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if emailDomain == "" {
		emailDomain = DefaultEmailDomain
	}
	return &UserService{
		Repo:        repo,
		Events:      events,
		Index:       index,
		Logger:      logger,
		EmailDomain: emailDomain,
	}
}

func (s *UserService) CreateBy(ctx context.Context, cmd command.CreateUser) (*entity.User, error) {
	email, ok := cmd.EmailAddress()
	if !ok {
		var err error
		if email, err = DeriveEmailAddress(cmd.FullName(), s.EmailDomain); err != nil {
			return nil, err
		}
	}
	if err := s.ensureEmailFree(ctx, email, nil); err != nil {
		return nil, err
	}

	u, err := entity.Register(entity.GenerateUserID(), email, cmd.FullName(), cmd.Age())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Insert(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("email", email.String()).Error("insert user failed")
		return nil, err
	}
	usersCreated.Add(1)
	s.Logger.WithField("user_id", u.ID().String()).Info("user created")

	drainEvents(ctx, s.Events, s.Logger, u)
	return u, nil
}

func (s *UserService) DisplayAll(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.ListAll(ctx)
}

func (s *UserService) DisplayByID(ctx context.Context, id entity.UserID) (*entity.User, bool, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *UserService) DisplayByEmail(ctx context.Context, email entity.EmailAddress) (*entity.User, bool, error) {
	return s.Repo.FindByEmail(ctx, email)
}

func (s *UserService) DeleteBy(ctx context.Context, id entity.UserID) error {
	u, found, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	u.MarkDeleted()
	if err := s.Repo.DeleteBy(ctx, id); err != nil {
		s.Logger.WithError(err).WithField("user_id", id.String()).Error("delete user failed")
		return err
	}
	usersDeleted.Add(1)
	s.Logger.WithField("user_id", id.String()).Info("user deleted")

	if s.Sessions != nil {
		if err := s.Sessions.SignOut(context.WithoutCancel(ctx), id.String()); err != nil {
			s.Logger.WithError(err).WithField("user_id", id.String()).Error("revoke session of deleted user failed")
		}
	}

	drainEvents(ctx, s.Events, s.Logger, u)
	return nil
}

func (s *UserService) ChangeBy(ctx context.Context, cmd command.ChangeUserDetails) (*entity.User, error) {
	u, found, err := s.Repo.FindByID(ctx, cmd.ID())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.With(apperror.ErrNotFound, "user %s not found", cmd.ID())
	}

	details := cmd.Details()
	if details.EmailAddress != nil && !details.EmailAddress.Equals(u.EmailAddress()) {
		if err := s.ensureEmailFree(ctx, *details.EmailAddress, u); err != nil {
			return nil, err
		}
	}
	if err := u.ChangeDetails(details); err != nil {
		return nil, err
	}
	if len(u.ListEvents()) == 0 {
		return u, nil
	}

	saved, err := s.Repo.ChangeDetails(ctx, u)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID().String()).Error("change user details failed")
		return nil, err
	}
	usersChanged.Add(1)

	drainEvents(ctx, s.Events, s.Logger, u)
	return saved, nil
}

// Search queries the search index. Without one it returns no hits.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}

func (s *UserService) ensureEmailFree(ctx context.Context, email entity.EmailAddress, self *entity.User) error {
	other, found, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if found && !other.Equals(self) {
		return apperror.With(apperror.ErrConflict, "email address %s is already in use", email)
	}
	return nil
}

// DeriveEmailAddress builds "<given>.<family>@<domain>" from a full name. Only
// ASCII letters and digits survive; an empty local part becomes "user".
func DeriveEmailAddress(name entity.FullName, domain string) (entity.EmailAddress, error) {
	var parts []string
	for _, word := range strings.Fields(strings.ToLower(name.String())) {
		var b strings.Builder
		for _, r := range word {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	local := strings.Join(parts, ".")
	if local == "" {
		local = "user"
	}
	return entity.EmailAddressFrom(local + "@" + domain)
}
