package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-hexagonal-users/internal/interface/http"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/middleware"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

// UserModule wires the users routes under /users. With AuthEnabled every
// route requires a signed-in caller.
type UserModule struct {
	Handler     *handlers.UserHandler
	Redis       *redis.Client
	JWT         *helpers.JWTManager
	AuthEnabled bool
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, jwt *helpers.JWTManager, authEnabled bool) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, JWT: jwt, AuthEnabled: authEnabled}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.Optional(m.AuthEnabled, middleware.Auth(m.Redis, m.JWT)),
		middleware.RateLimit(m.Redis, middleware.PerMinute(300, middleware.KeyByIP()).SkipWhen(middleware.SkipPrivateIP())),
		middleware.RateLimit(m.Redis, middleware.PerMinute(120, middleware.KeyByUserID())),
	)
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/by-email", m.Handler.GetByEmail)
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", m.Handler.Change)
		users.DELETE("/:id", m.Handler.Delete)
	}
}
