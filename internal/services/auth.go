package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gambleio-server/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minCredentialLength = 3

type AuthResult struct {
	Token string           `json:"token"`
	User  models.UserStats `json:"user"`
}

type AuthService struct {
	store           Store
	tokens          *TokenService
	startingBalance float64
	ownerUsername   string
	now             func() time.Time
}

func NewAuthService(store Store, tokens *TokenService, startingBalance float64, ownerUsername string) *AuthService {
	return &AuthService{
		store:           store,
		tokens:          tokens,
		startingBalance: startingBalance,
		ownerUsername:   models.NormalizeUsername(ownerUsername),
		now:             time.Now,
	}
}

func (s *AuthService) isOwner(username string) bool {
	return s.ownerUsername != "" && username == s.ownerUsername
}

func (s *AuthService) Register(ctx context.Context, username, password, displayName string) (AuthResult, error) {
	key := models.NormalizeUsername(username)
	if utf8.RuneCountInString(key) < minCredentialLength || utf8.RuneCountInString(password) < minCredentialLength {
		return AuthResult{}, fmt.Errorf("%w: username and password must be at least 3 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, displayName, string(hash), s.startingBalance, s.now())
	if s.isOwner(user.Username) {
		user.SetRole(models.RoleOwner)
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(ctx, user.Username)
	if err != nil {
		return AuthResult{}, err
	}

	log.WithField("username", user.Username).Info("User registered")
	return AuthResult{Token: token, User: user.Stats()}, nil
}

// Login verifies the password. Accounts still holding a plaintext password
// are upgraded to a bcrypt hash on their first successful login.
func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}

	hashed := strings.HasPrefix(user.PasswordHash, "$2")
	if hashed {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return AuthResult{}, ErrInvalidCredentials
		}
	} else if user.PasswordHash != password {
		return AuthResult{}, ErrInvalidCredentials
	}

	if !hashed || (s.isOwner(user.Username) && user.Role != models.RoleOwner) {
		var hash []byte
		if !hashed {
			hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
			}
		}
		user, err = s.store.UpdateUser(ctx, user.Username, func(u *models.User) error {
			if hash != nil {
				u.PasswordHash = string(hash)
			}
			if s.isOwner(u.Username) {
				u.SetRole(models.RoleOwner)
			}
			return nil
		})
		if err != nil {
			return AuthResult{}, err
		}
	}

	token, err := s.tokens.Issue(ctx, user.Username)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user.Stats()}, nil
}

// Logout always succeeds from the caller's point of view.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.tokens.Revoke(ctx, token); err != nil {
		log.WithError(err).Warn("Failed to revoke session")
	}
}
