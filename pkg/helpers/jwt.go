package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "hexagonal-users"

// ErrInvalidToken wraps every parse or verification failure.
var ErrInvalidToken = errors.New("invalid token")

type tokenKind string

const (
	accessKind  tokenKind = "access"
	refreshKind tokenKind = "refresh"
)

// JWTManager signs and verifies session-bound access and refresh tokens.
// Both kinds carry the user id and the session id; each kind has its own
// secret and lifetime.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

type Claims struct {
	UserID    string    `json:"uid"`
	SessionID string    `json:"sid"`
	Kind      tokenKind `json:"typ"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID, sessionID string) (string, time.Time, error) {
	return m.sign(accessKind, userID, sessionID)
}

func (m *JWTManager) GenerateRefreshToken(userID, sessionID string) (string, time.Time, error) {
	return m.sign(refreshKind, userID, sessionID)
}

func (m *JWTManager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(accessKind, token)
}

func (m *JWTManager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(refreshKind, token)
}

func (m *JWTManager) keyFor(kind tokenKind) ([]byte, time.Duration) {
	if kind == refreshKind {
		return m.RefreshSecret, m.RefreshTTL
	}
	return m.AccessSecret, m.AccessTTL
}

func (m *JWTManager) sign(kind tokenKind, userID, sessionID string) (string, time.Time, error) {
	secret, ttl := m.keyFor(kind)
	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return s, exp, nil
}

func (m *JWTManager) parse(kind tokenKind, token string) (*Claims, error) {
	secret, _ := m.keyFor(kind)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Kind != kind || claims.UserID == "" {
		return nil, fmt.Errorf("%w: not a %s token", ErrInvalidToken, kind)
	}
	return claims, nil
}
