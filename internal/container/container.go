package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/config"
	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

// app-level container sharing the components built at startup so the router
// can wire modules from them.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager

	userRepo       repository.UserRepository
	credentialRepo repository.CredentialRepository
	events         application.EventPublishing
	userIndex      application.UserIndexing
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetUserRepository(r repository.UserRepository)             { userRepo = r }
func GetUserRepository() repository.UserRepository              { return userRepo }
func SetCredentialRepository(r repository.CredentialRepository) { credentialRepo = r }
func GetCredentialRepository() repository.CredentialRepository  { return credentialRepo }
func SetEvents(p application.EventPublishing)                   { events = p }
func GetEvents() application.EventPublishing                    { return events }

// SetUserIndex stores the search index. A nil index disables search.
func SetUserIndex(i application.UserIndexing) { userIndex = i }
func GetUserIndex() application.UserIndexing  { return userIndex }
