package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gambleio-server/internal/config"
	"gambleio-server/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON document per user and guards read-modify-write
// cycles with WATCH so concurrent updates to one user never lose writes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return NewRedisStoreWithClient(client), nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func userKey(username string) string {
	return fmt.Sprintf(KeyUser, models.NormalizeUsername(username))
}

func slugKey(slug string) string {
	return fmt.Sprintf(KeyProfileSlug, strings.ToLower(slug))
}

func decodeUser(data string) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %v", err)
	}
	return &user, nil
}

func (s *RedisStore) CreateUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %v", err)
	}

	created, err := s.client.SetNX(ctx, userKey(user.Username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}
	if !created {
		return ErrUserExists
	}

	claimed, err := s.client.SetNX(ctx, slugKey(user.ProfileSlug), user.Username, 0).Result()
	if err != nil || !claimed {
		s.client.Del(ctx, userKey(user.Username))
		if err != nil {
			return fmt.Errorf("failed to claim profile slug: %v", err)
		}
		return ErrUserExists
	}

	return s.client.SAdd(ctx, KeyUserIndex, user.Username).Err()
}

func (s *RedisStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Result()
	if err == redis.Nil {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return decodeUser(data)
}

func (s *RedisStore) GetUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	username, err := s.client.Get(ctx, slugKey(slug)).Result()
	if err == redis.Nil {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile slug: %v", err)
	}
	return s.GetUser(ctx, username)
}

func (s *RedisStore) UpdateUser(ctx context.Context, username string, fn func(*models.User) error) (*models.User, error) {
	key := userKey(username)
	var updated *models.User

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		user, err := decodeUser(data)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}

		encoded, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %v", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err == nil {
			updated = user
		}
		return err
	}

	for i := 0; i < MaxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}

	return nil, ErrStoreConflict
}

func (s *RedisStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	names, err := s.client.SMembers(ctx, KeyUserIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	if len(names) == 0 {
		return []*models.User{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.Get(ctx, userKey(name))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	users := make([]*models.User, 0, len(names))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		user, err := decodeUser(data)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *RedisStore) CreateSession(ctx context.Context, sessionID, username string) error {
	key := fmt.Sprintf(KeySession, sessionID)
	return s.client.Set(ctx, key, models.NormalizeUsername(username), 0).Err()
}

func (s *RedisStore) SessionUser(ctx context.Context, sessionID string) (string, error) {
	key := fmt.Sprintf(KeySession, sessionID)
	username, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %v", err)
	}
	return username, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeySession, sessionID)).Err()
}

func (s *RedisStore) AppendAdminLog(ctx context.Context, entry *models.AdminLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal admin log: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, KeyAdminLogs, data)
	pipe.LTrim(ctx, KeyAdminLogs, 0, maxAdminLogs-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) AdminLogs(ctx context.Context, limit int) ([]*models.AdminLog, error) {
	limit = clampLogLimit(limit)

	raw, err := s.client.LRange(ctx, KeyAdminLogs, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read admin logs: %v", err)
	}

	logs := make([]*models.AdminLog, 0, len(raw))
	for _, item := range raw {
		var entry models.AdminLog
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		logs = append(logs, &entry)
	}
	return logs, nil
}

func (s *RedisStore) RecordPlinkoLanding(ctx context.Context, slot int) error {
	if slot < 0 || slot >= models.PlinkoSlots {
		return ErrInvalidInput
	}

	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, KeyPlinkoTotal)
	pipe.HIncrBy(ctx, KeyPlinkoSlots, strconv.Itoa(slot), 1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) PlinkoStats(ctx context.Context) (models.PlinkoStats, error) {
	stats := models.NewPlinkoStats()

	total, err := s.client.Get(ctx, KeyPlinkoTotal).Int64()
	if err != nil && err != redis.Nil {
		return stats, fmt.Errorf("failed to read plinko total: %v", err)
	}
	stats.TotalBalls = total

	slots, err := s.client.HGetAll(ctx, KeyPlinkoSlots).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read plinko landings: %v", err)
	}
	for field, value := range slots {
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 0 || idx >= models.PlinkoSlots {
			continue
		}
		n, _ := strconv.ParseInt(value, 10, 64)
		stats.Landings[idx] = n
	}
	return stats, nil
}

func (s *RedisStore) Reset(ctx context.Context) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}

	keys := []string{KeyUserIndex, KeyPlinkoTotal, KeyPlinkoSlots}
	for _, u := range users {
		keys = append(keys, userKey(u.Username), slugKey(u.ProfileSlug))
	}

	iter := s.client.Scan(ctx, 0, KeySessionPrefix, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan sessions: %v", err)
	}

	return s.client.Del(ctx, keys...).Err()
}
