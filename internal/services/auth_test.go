package services_test

import (
	"context"
	"strings"
	"testing"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(store services.Store) (*services.AuthService, *services.TokenService) {
	tokens := services.NewTokenService("test-secret", store)
	return services.NewAuthService(store, tokens, models.DefaultStartingBalance, "Boss"), tokens
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()
	auth, tokens := newAuth(store)

	res, err := auth.Register(ctx, " Alice ", "hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "Alice", res.User.DisplayName)
	assert.Equal(t, 10000.0, res.User.Balance)
	assert.Equal(t, 1, res.User.Level)
	assert.NotEqual(t, "alice", res.User.ProfileSlug)

	username, _, err := tokens.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	stored := getUser(t, store, "alice")
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))

	_, err = auth.Register(ctx, "ALICE", "other", "")
	assert.ErrorIs(t, err, services.ErrUserExists)

	_, err = auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	login, err := auth.Login(ctx, "ALICE", "hunter2")
	require.NoError(t, err)

	auth.Logout(ctx, login.Token)
	_, _, err = tokens.Validate(ctx, login.Token)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	// The first session is independent of the second.
	_, _, err = tokens.Validate(ctx, res.Token)
	assert.NoError(t, err)

	auth.Logout(ctx, "not-a-token")
	auth.Logout(ctx, "")
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newAuth(services.NewMemoryStore())

	_, err := auth.Register(context.Background(), "ab", "password", "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = auth.Register(context.Background(), "abc", "pw", "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestOwnerRegistration(t *testing.T) {
	auth, _ := newAuth(services.NewMemoryStore())

	res, err := auth.Register(context.Background(), "boss", "password", "The Boss")
	require.NoError(t, err)
	require.NotNil(t, res.User.Role)
	assert.Equal(t, models.RoleOwner, *res.User.Role)
	assert.True(t, res.User.IsOwner)
	assert.True(t, res.User.IsAdmin)
}

func TestLegacyPlaintextPasswordIsUpgraded(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()
	auth, _ := newAuth(store)

	legacy := models.NewUser("old", "", "letmein", 10, testNow)
	require.NoError(t, store.CreateUser(ctx, legacy))

	_, err := auth.Login(ctx, "old", "letmein")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(getUser(t, store, "old").PasswordHash, "$2"))

	_, err = auth.Login(ctx, "old", "letmein")
	assert.NoError(t, err)
}

func TestTokenRejectsForgery(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()
	createUser(t, store, "mallory", models.RoleNone, 1)

	forged, err := services.NewTokenService("other-secret", store).Issue(ctx, "mallory")
	require.NoError(t, err)

	_, _, err = services.NewTokenService("test-secret", store).Validate(ctx, forged)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
}
