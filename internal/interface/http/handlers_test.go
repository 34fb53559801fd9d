package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/memory"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/messaging"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/persistence"
	handlers "github.com/oksasatya/go-hexagonal-users/internal/interface/http"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/middleware"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
	"github.com/oksasatya/go-hexagonal-users/pkg/validation"
)

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
	Meta    map[string]any    `json:"meta"`
}

type userModel struct {
	UserID       string `json:"userId"`
	EmailAddress string `json:"emailAddress"`
	FullName     string `json:"fullName"`
	Age          int    `json:"age"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
	redis  *miniredis.Miniredis
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := memory.NewUserRepository()
	creds := memory.NewCredentialRepository()
	events := messaging.NewLogPublisher(logger)
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)

	uh := handlers.NewUserHandler(application.NewUserService(users, events, nil, logger, "example.com"), logger)
	ah := handlers.NewAuthHandler(
		application.NewRegistrationService(users, creds, events, logger),
		application.NewAuthService(users, creds, jwt, rdb, logger),
		jwt, logger, "", false,
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	g := r.Group("/api")
	g.POST("/auth/register", ah.Register)
	g.POST("/auth/sign-in", ah.SignIn)
	g.POST("/auth/refresh", ah.Refresh)
	g.POST("/auth/sign-out", ah.SignOut)
	u := g.Group("/users", middleware.Auth(rdb, jwt))
	u.POST("", uh.Create)
	u.GET("", uh.List)
	u.GET("/by-email", uh.GetByEmail)
	u.GET("/search", uh.Search)
	u.GET("/:id", uh.Get)
	u.PUT("/:id", uh.Change)
	u.DELETE("/:id", uh.Delete)

	return &api{t: t, engine: r, redis: mr}
}

func (a *api) do(method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// signIn registers an account and returns its access token.
func (a *api) signIn() string {
	a.t.Helper()
	w, _ := a.do(http.MethodPost, "/api/auth/register", map[string]any{
		"emailAddress": "admin@example.com", "fullName": "Admin", "age": 40, "password": "s3cret-pass",
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code)

	w, env := a.do(http.MethodPost, "/api/auth/sign-in", map[string]any{
		"emailAddress": "admin@example.com", "password": "s3cret-pass",
	}, "")
	require.Equal(a.t, http.StatusOK, w.Code)
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func decodeUser(t *testing.T, env envelope) userModel {
	t.Helper()
	var m userModel
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func TestUsersRequireAuthentication(t *testing.T) {
	a := newAPI(t)
	w, _ := a.do(http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserLifecycle(t *testing.T) {
	a := newAPI(t)
	token := a.signIn()

	w, env := a.do(http.MethodPost, "/api/users", map[string]any{"fullName": "John Doe", "age": 32}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeUser(t, env)
	assert.Equal(t, "john.doe@example.com", created.EmailAddress)
	assert.Equal(t, "/api/users/"+created.UserID, w.Header().Get("Location"))

	w, env = a.do(http.MethodGet, "/api/users/"+created.UserID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeUser(t, env))

	w, env = a.do(http.MethodGet, "/api/users/by-email?email=JOHN.DOE@example.com", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.UserID, decodeUser(t, env).UserID)

	w, env = a.do(http.MethodPut, "/api/users/"+created.UserID, map[string]any{"age": 33}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changed := decodeUser(t, env)
	assert.Equal(t, 33, changed.Age)
	assert.Equal(t, "John Doe", changed.FullName)

	w, env = a.do(http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var all []userModel
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	w, _ = a.do(http.MethodDelete, "/api/users/"+created.UserID, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = a.do(http.MethodDelete, "/api/users/"+created.UserID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = a.do(http.MethodGet, "/api/users/"+created.UserID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserErrors(t *testing.T) {
	a := newAPI(t)
	token := a.signIn()
	unknown := "6f1c3c1e-6c1e-4a52-9f7a-0d0c7d1f1a11"

	tests := []struct {
		name      string
		method    string
		path      string
		body      any
		status    int
		errFields []string
	}{
		{"create invalid", http.MethodPost, "/api/users", map[string]any{"fullName": "John", "age": 200}, http.StatusBadRequest, []string{"age"}},
		{"create missing age", http.MethodPost, "/api/users", map[string]any{"fullName": "John"}, http.StatusBadRequest, []string{"age"}},
		{"create bad email", http.MethodPost, "/api/users", map[string]any{"fullName": "John", "age": 3, "emailAddress": "nope"}, http.StatusBadRequest, []string{"emailAddress"}},
		{"create malformed json", http.MethodPost, "/api/users", `{"fullName":`, http.StatusBadRequest, []string{"payload"}},
		{"create duplicate", http.MethodPost, "/api/users", map[string]any{"fullName": "Admin", "age": 3, "emailAddress": "admin@example.com"}, http.StatusConflict, nil},
		{"get malformed id", http.MethodGet, "/api/users/nope", nil, http.StatusBadRequest, []string{"userId"}},
		{"get unknown id", http.MethodGet, "/api/users/" + unknown, nil, http.StatusNotFound, nil},
		{"by-email blank", http.MethodGet, "/api/users/by-email?email=", nil, http.StatusBadRequest, []string{"emailAddress"}},
		{"by-email malformed", http.MethodGet, "/api/users/by-email?email=nope", nil, http.StatusBadRequest, []string{"emailAddress"}},
		{"by-email unknown", http.MethodGet, "/api/users/by-email?email=ghost@example.com", nil, http.StatusNotFound, nil},
		{"change unknown", http.MethodPut, "/api/users/" + unknown, map[string]any{"age": 3}, http.StatusNotFound, nil},
		{"change invalid", http.MethodPut, "/api/users/nope", map[string]any{"age": -3}, http.StatusBadRequest, []string{"age"}},
		{"delete malformed id", http.MethodDelete, "/api/users/nope", nil, http.StatusBadRequest, []string{"userId"}},
		{"search without query", http.MethodGet, "/api/users/search", nil, http.StatusBadRequest, []string{"q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := a.do(tt.method, tt.path, tt.body, token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.False(t, env.Success)
			for _, f := range tt.errFields {
				assert.Contains(t, env.Error, f)
			}
		})
	}
}

func TestSearchWithoutIndex(t *testing.T) {
	a := newAPI(t)
	token := a.signIn()
	w, env := a.do(http.MethodGet, "/api/users/search?q=john", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), env.Meta["count"])
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/auth/register", map[string]any{
		"emailAddress": "john@doe.com", "fullName": "John Doe", "age": 32, "password": "short",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "password")

	token := a.signIn()

	w, _ = a.do(http.MethodPost, "/api/auth/register", map[string]any{
		"emailAddress": "admin@example.com", "fullName": "Again", "age": 20, "password": "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(http.MethodPost, "/api/auth/sign-in", map[string]any{
		"emailAddress": "admin@example.com", "password": "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(http.MethodPost, "/api/auth/sign-in", map[string]any{"emailAddress": "admin@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPost, "/api/auth/sign-out", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, a.redis.Keys(), 0)

	w, _ = a.do(http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "signed-out tokens are rejected")
}

func TestSignInSetsCookiesAndRefreshRotates(t *testing.T) {
	a := newAPI(t)
	a.signIn()

	w, _ := a.do(http.MethodPost, "/api/auth/sign-in", map[string]any{
		"emailAddress": "admin@example.com", "password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var refresh *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.RefreshTokenCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	rw := httptest.NewRecorder()
	a.engine.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)

	rw = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	a.engine.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusUnauthorized, rw.Code, "a rotated refresh token is rejected")

	w, _ = a.do(http.MethodPost, "/api/auth/refresh", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusFor(t *testing.T) {
	bad := "nope"
	corrupt, err := persistence.Rehydrate(entity.GenerateUserID().String(), &bad, "John Doe", 32)
	require.Nil(t, corrupt)
	require.Error(t, err)

	tests := []struct {
		err  error
		want int
	}{
		{apperror.NewValidation("age", "bad"), http.StatusBadRequest},
		{apperror.With(apperror.ErrNotFound, "x"), http.StatusNotFound},
		{apperror.With(apperror.ErrConflict, "x"), http.StatusConflict},
		{apperror.Wrap(apperror.ErrPersistence, apperror.With(apperror.ErrConflict, "dup"), "update"), http.StatusConflict},
		{apperror.With(apperror.ErrUnauthorized, "x"), http.StatusUnauthorized},
		{apperror.With(apperror.ErrPersistence, "x"), http.StatusInternalServerError},
		{apperror.Wrap(apperror.ErrPersistence, apperror.NewValidation("age", "bad"), "stored user"), http.StatusInternalServerError},
		{err, http.StatusInternalServerError},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, handlers.StatusFor(tt.err), tt.err.Error())
	}
}
