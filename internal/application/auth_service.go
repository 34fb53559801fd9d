package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	repo "github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

var ErrInvalidCredentials = apperror.With(apperror.ErrUnauthorized, "invalid credentials")

const defaultSessionTTL = 24 * time.Hour

// AuthService signs users in and keeps their session in Redis.
type AuthService struct {
	Users       repo.UserRepository
	Credentials repo.CredentialRepository
	JWT         *helpers.JWTManager
	Redis       *redis.Client
	Logger      *logrus.Logger
	SessionTTL  time.Duration
}

var (
	_ UserSignIn        = (*AuthService)(nil)
	_ SessionRevocation = (*AuthService)(nil)
)

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type SignInResult struct {
	User   *entity.User
	Tokens TokenPair
}

// SessionKey is the Redis hash holding the active session of a user.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAuthService(users repo.UserRepository, creds repo.CredentialRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		Users:       users,
		Credentials: creds,
		JWT:         jwt,
		Redis:       rdb,
		Logger:      logger,
		SessionTTL:  defaultSessionTTL,
	}
}

// Authenticate checks email and password without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	addr, err := entity.EmailAddressFrom(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, found, err := s.Users.FindByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	hash := ""
	if found {
		if hash, found, err = s.Credentials.FindPasswordHash(ctx, u.ID()); err != nil {
			return nil, err
		}
	}
	if !found {
		// same bcrypt work as a wrong password, so timing does not reveal
		// which addresses are registered
		helpers.CompareHashAndPassword(dummyHash(), password)
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// dummyHash is compared against when the account or its credential is missing.
var dummyHash = sync.OnceValue(func() string {
	h, err := helpers.HashPassword("invalid-credentials-placeholder")
	if err != nil {
		return ""
	}
	return h
})

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: u, Tokens: pair}, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID().String(), sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID().String()).Error("generate tokens failed")
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID().String(),
			"email":      u.EmailAddress().String(),
			"name":       u.FullName().String(),
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := SessionKey(u.ID().String())
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

// Refresh rotates the session id and both tokens. The refresh token must
// belong to the current session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	id, err := entity.UserIDFrom(claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, found, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return TokenPair{}, err
	}
	if !found {
		return TokenPair{}, ErrInvalidCredentials
	}

	key := SessionKey(u.ID().String())
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}

	sid := uuid.NewString()
	pair, err := s.tokens(u.ID().String(), sid)
	if err != nil {
		return TokenPair{}, err
	}
	if s.Redis != nil {
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

// SignOut drops the session. Tokens issued for it stop being accepted.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	if err := helpers.RedisDel(ctx, s.Redis, SessionKey(userID)); err != nil {
		return apperror.Wrap(apperror.ErrPersistence, err, "drop session")
	}
	return nil
}

func (s *AuthService) tokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
