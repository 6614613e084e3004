package services

import (
	"context"

	"gambleio-server/internal/models"
)

// UserStore persists user records keyed by normalized username.
//
// UpdateUser is the only mutation path for an existing record: fn receives a
// private copy and the result is written only if fn returns nil. Concurrent
// updates to the same key never lose writes.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserBySlug(ctx context.Context, slug string) (*models.User, error)
	UpdateUser(ctx context.Context, username string, fn func(*models.User) error) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// SessionStore maps session ids to usernames. Sessions never expire.
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID, username string) error
	SessionUser(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type AdminLogStore interface {
	AppendAdminLog(ctx context.Context, entry *models.AdminLog) error
	AdminLogs(ctx context.Context, limit int) ([]*models.AdminLog, error)
}

type PlinkoStatsStore interface {
	RecordPlinkoLanding(ctx context.Context, slot int) error
	PlinkoStats(ctx context.Context) (models.PlinkoStats, error)
}

type Store interface {
	UserStore
	SessionStore
	AdminLogStore
	PlinkoStatsStore

	// Reset wipes users, sessions and plinko statistics.
	Reset(ctx context.Context) error
	Close() error
}

const maxAdminLogs = 1000

func clampLogLimit(limit int) int {
	if limit <= 0 {
		return 500
	}
	if limit > maxAdminLogs {
		return maxAdminLogs
	}
	return limit
}
