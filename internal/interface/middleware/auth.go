package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
	"github.com/oksasatya/go-hexagonal-users/pkg/response"
)

// Auth validates the access token and, when rdb is set, requires the Redis
// session it was issued for to still be current.
// It sets userID, sessionID and userEmail in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AccessToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		email := ""
		if rdb != nil {
			data, err := rdb.HGetAll(c.Request.Context(), application.SessionKey(claims.UserID)).Result()
			if err != nil || len(data) == 0 {
				response.Abort(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			if data["sid"] != claims.SessionID {
				response.Abort(c, http.StatusUnauthorized, "session expired", nil)
				return
			}
			email = data["email"]
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxSessionIDKey, claims.SessionID)
		c.Set(CtxUserEmailKey, email)
		c.Next()
	}
}

// Optional runs Auth only when enabled is true.
func Optional(enabled bool, mw gin.HandlerFunc) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return mw
}
