package services

import (
	"context"
	"strings"
	"sync"

	"gambleio-server/internal/models"
)

// MemoryStore keeps everything in process memory. Updates to one user are
// serialized by a per-username mutex; different users proceed in parallel.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	locks    map[string]*sync.Mutex
	sessions map[string]string
	logs     []*models.AdminLog
	plinko   models.PlinkoStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		locks:    make(map[string]*sync.Mutex),
		sessions: make(map[string]string),
		plinko:   models.NewPlinkoStats(),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return ErrUserExists
	}
	for _, u := range s.users {
		if strings.EqualFold(u.ProfileSlug, user.ProfileSlug) {
			return ErrUserExists
		}
	}
	s.users[user.Username] = user.Clone()
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[models.NormalizeUsername(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *MemoryStore) GetUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.ProfileSlug, slug) {
			return u.Clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) userLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[username]
	if !ok {
		l = &sync.Mutex{}
		s.locks[username] = l
	}
	return l
}

func (s *MemoryStore) UpdateUser(ctx context.Context, username string, fn func(*models.User) error) (*models.User, error) {
	key := models.NormalizeUsername(username)
	l := s.userLock(key)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	current, ok := s.users[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}

	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}

	s.mu.Lock()
	// A reset may have removed the user while fn ran.
	if _, still := s.users[key]; !still {
		s.mu.Unlock()
		return nil, ErrUserNotFound
	}
	s.users[key] = updated
	s.mu.Unlock()

	return updated.Clone(), nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	return users, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, sessionID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = models.NormalizeUsername(username)
	return nil
}

func (s *MemoryStore) SessionUser(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrNotAuthenticated
	}
	return username, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) AppendAdminLog(ctx context.Context, entry *models.AdminLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	s.logs = append(s.logs, &e)
	if len(s.logs) > maxAdminLogs {
		s.logs = s.logs[len(s.logs)-maxAdminLogs:]
	}
	return nil
}

func (s *MemoryStore) AdminLogs(ctx context.Context, limit int) ([]*models.AdminLog, error) {
	limit = clampLogLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.AdminLog, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		e := *s.logs[i]
		out = append(out, &e)
	}
	return out, nil
}

func (s *MemoryStore) RecordPlinkoLanding(ctx context.Context, slot int) error {
	if slot < 0 || slot >= models.PlinkoSlots {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plinko.TotalBalls++
	s.plinko.Landings[slot]++
	return nil
}

func (s *MemoryStore) PlinkoStats(ctx context.Context) (models.PlinkoStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.PlinkoStats{
		TotalBalls: s.plinko.TotalBalls,
		Landings:   append([]int64(nil), s.plinko.Landings...),
	}
	return stats, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*models.User)
	s.sessions = make(map[string]string)
	s.plinko = models.NewPlinkoStats()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
