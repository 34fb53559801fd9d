package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-hexagonal-users/internal/interface/http"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/middleware"
)

// AuthModule wires the public account routes under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(5, middleware.KeyByIPAndPath()))
	signInLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(10, middleware.KeyByIPAndPath()))
	refreshLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(60, middleware.KeyByIPAndPath()))

	auth := rg.Group("/auth")
	{
		auth.POST("/register", registerLimiter, m.Handler.Register)
		auth.POST("/sign-in", signInLimiter, m.Handler.SignIn)
		auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)
		auth.POST("/sign-out", m.Handler.SignOut)
	}
}
