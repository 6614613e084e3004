package services_test

import (
	"context"
	"testing"
	"time"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, store services.UserStore, username string, role models.Role, balance float64) *models.User {
	t.Helper()

	user := models.NewUser(username, "", "", balance, testNow)
	user.SetRole(role)
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func getUser(t *testing.T, store services.UserStore, username string) *models.User {
	t.Helper()

	user, err := store.GetUser(context.Background(), username)
	require.NoError(t, err)
	return user
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func ptr[T any](v T) *T {
	return &v
}
