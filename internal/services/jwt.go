package services

import (
	"context"
	"errors"
	"fmt"

	"gambleio-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims identify a login session. Subject is the username and ID is
// the session id, which must still exist in the session store.
type SessionClaims struct {
	jwt.RegisteredClaims
}

type TokenService struct {
	secret   []byte
	sessions SessionStore
}

func NewTokenService(secret string, sessions SessionStore) *TokenService {
	return &TokenService{secret: []byte(secret), sessions: sessions}
}

// Issue opens a new session for username and returns its bearer token.
// Tokens carry no expiry; logout is the only way to end a session.
func (s *TokenService) Issue(ctx context.Context, username string) (string, error) {
	sessionID := models.GenerateSessionID()
	username = models.NormalizeUsername(username)

	if err := s.sessions.CreateSession(ctx, sessionID, username); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: username,
			ID:      sessionID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}

// Validate returns the username and session id of a live token.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (string, string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", "", err
	}

	username, err := s.sessions.SessionUser(ctx, claims.ID)
	if err != nil || username != claims.Subject {
		return "", "", ErrNotAuthenticated
	}
	return username, claims.ID, nil
}

// Revoke ends the session behind tokenString. Unknown or malformed tokens
// are ignored.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil
	}
	return s.sessions.DeleteSession(ctx, claims.ID)
}
