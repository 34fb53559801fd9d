package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/http/dto"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/middleware"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
	"github.com/oksasatya/go-hexagonal-users/pkg/response"
)

type AuthHandler struct {
	Registration application.UserRegistration
	SignIns      application.UserSignIn
	JWT          *helpers.JWTManager
	Logger       *logrus.Logger
	Cookies      *helpers.CookieManager
}

func NewAuthHandler(reg application.UserRegistration, signIns application.UserSignIn, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthHandler{
		Registration: reg,
		SignIns:      signIns,
		JWT:          jwt,
		Logger:       logger,
		Cookies:      helpers.NewCookieManager(cookieDomain, cookieSecure),
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func tokenMeta(p application.TokenPair) map[string]any {
	return map[string]any{
		"access_expires_at":  p.AccessTokenExpiry,
		"refresh_expires_at": p.RefreshTokenExpiry,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterUserModel
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cmd, err := dto.RegisterUserModelToCommand().Apply(&req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	u, err := h.Registration.Register(c.Request.Context(), *cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	model, _ := dto.UserToModel().Apply(u)
	response.Success(c, http.StatusCreated, model, "registration successful", nil)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInModel
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.SignIns.SignIn(c.Request.Context(), req.EmailAddress, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	t := res.Tokens
	h.Cookies.SetTokens(c, t.AccessToken, t.AccessTokenExpiry, t.RefreshToken, t.RefreshTokenExpiry)
	model, _ := dto.UserToModel().Apply(res.User)
	response.Success(c, http.StatusOK, gin.H{
		"user":         model,
		"accessToken":  t.AccessToken,
		"refreshToken": t.RefreshToken,
	}, "sign-in successful", tokenMeta(t))
}

// Refresh accepts the refresh token from its cookie or the JSON body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, _ := c.Cookie(helpers.RefreshTokenCookie)
	if refresh == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		refresh = req.RefreshToken
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.SignIns.Refresh(c.Request.Context(), refresh)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetTokens(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "token refreshed", tokenMeta(pair))
}

// SignOut drops the session of the caller when one can be identified and
// always clears the token cookies.
func (h *AuthHandler) SignOut(c *gin.Context) {
	uid := middleware.CurrentUserID(c)
	if uid == "" && h.JWT != nil {
		if claims, err := h.JWT.ParseAccessToken(middleware.AccessToken(c)); err == nil {
			uid = claims.UserID
		}
	}
	if uid != "" {
		if err := h.SignIns.SignOut(c.Request.Context(), uid); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"signedOut": true}, "signed out", nil)
}
