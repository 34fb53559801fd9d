package router

import (
	"context"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/container"
	handlers "github.com/oksasatya/go-hexagonal-users/internal/interface/http"
	"github.com/oksasatya/go-hexagonal-users/internal/router/modules"
)

type UserModuleDeps struct {
	Users        *application.UserService
	Registration *application.RegistrationService
	Auth         *application.AuthService
	UserHandler  *handlers.UserHandler
	AuthHandler  *handlers.AuthHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := container.GetUserRepository()
	creds := container.GetCredentialRepository()

	users := application.NewUserService(
		repo,
		container.GetEvents(),
		container.GetUserIndex(),
		logger,
		cfg.UserEmailDomain,
	)
	registration := application.NewRegistrationService(repo, creds, container.GetEvents(), logger)
	auth := application.NewAuthService(repo, creds, container.GetJWT(), container.GetRedis(), logger)
	users.Sessions = auth

	return UserModuleDeps{
		Users:        users,
		Registration: registration,
		Auth:         auth,
		UserHandler:  handlers.NewUserHandler(users, logger),
		AuthHandler: handlers.NewAuthHandler(
			registration,
			auth,
			container.GetJWT(),
			logger,
			cfg.CookieDomain,
			cfg.CookieSecure,
		),
	}
}

// InitModules builds every module from the container and adds it to the
// registry. Call it once during startup, after the container is filled.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	deps := buildUserDeps()

	if rdb != nil {
		r.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	r.Add(modules.NewAuthModule(deps.AuthHandler, rdb))
	r.Add(modules.NewUserModule(deps.UserHandler, rdb, container.GetJWT(), cfg.AuthEnabled))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
