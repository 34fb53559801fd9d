package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieManager writes the http-only token cookies issued on sign-in.
type CookieManager struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewCookieManager(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, SameSite: http.SameSiteLaxMode}
}

// SetTokens sets both cookies to expire with their tokens.
func (m *CookieManager) SetTokens(c *gin.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	m.set(c, AccessTokenCookie, access, secondsUntil(accessExp))
	m.set(c, RefreshTokenCookie, refresh, secondsUntil(refreshExp))
}

// Clear expires both cookies.
func (m *CookieManager) Clear(c *gin.Context) {
	m.set(c, AccessTokenCookie, "", -1)
	m.set(c, RefreshTokenCookie, "", -1)
}

func (m *CookieManager) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(m.SameSite)
	c.SetCookie(name, value, maxAge, "/", m.Domain, m.Secure, true)
}

func secondsUntil(exp time.Time) int {
	return max(int(time.Until(exp).Seconds()), 0)
}
