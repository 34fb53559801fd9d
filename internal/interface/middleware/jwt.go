package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

// Context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
	CtxUserEmailKey = "userEmail"
)

// AccessToken returns the bearer token of the request, falling back to the
// access_token cookie.
func AccessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	token, err := c.Cookie(helpers.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// CurrentUserID returns the user authenticated by Auth, if any.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
