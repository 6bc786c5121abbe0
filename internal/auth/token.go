package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ridwanfathin/invoice-service/internal/clock"
)

// Common errors
var (
	ErrNoSecret     = errors.New("jwt secret is not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents JWT claims. UserID is the owner every invoice operation is scoped to.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
}

// TokenManager issues and validates HS256 access tokens
type TokenManager struct {
	secret     []byte
	expiration time.Duration
	clock      clock.Clock
}

// NewTokenManager creates a TokenManager. A nil clock uses the real clock.
func NewTokenManager(secret string, expiration time.Duration, c clock.Clock) *TokenManager {
	if c == nil {
		c = clock.Real{}
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		expiration: expiration,
		clock:      c,
	}
}

// IssueAccessToken signs a token for the given user
func (m *TokenManager) IssueAccessToken(userID, email string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}

	now := m.clock.Now()
	expiresAt := now.Add(m.expiration)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken validates and parses an access token
func (m *TokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
