package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gambleio-server/internal/models"

	log "github.com/sirupsen/logrus"
)

const (
	AdjustXP    = "xp"
	AdjustMoney = "money"
)

// AdminService implements role-gated moderation. Every mutating action is
// checked against the actor's current stored role and written to the audit log.
type AdminService struct {
	store    Store
	roulette *RouletteEngine
	chat     *ChatService
	resetKey string
	now      func() time.Time
}

func NewAdminService(store Store, roulette *RouletteEngine, chat *ChatService, resetKey string) *AdminService {
	return &AdminService{
		store:    store,
		roulette: roulette,
		chat:     chat,
		resetKey: resetKey,
		now:      time.Now,
	}
}

func (s *AdminService) actor(ctx context.Context, username string, allowed func(models.Role) bool) (*models.User, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	if !allowed(user.Role) {
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *AdminService) appendLog(ctx context.Context, entry *models.AdminLog) {
	entry.ID = models.GenerateLogID()
	entry.Timestamp = s.now().UnixMilli()
	if err := s.store.AppendAdminLog(ctx, entry); err != nil {
		log.WithError(err).WithField("type", entry.Type).Error("Failed to append admin log")
		return
	}
	log.WithFields(log.Fields{
		"actor":  entry.ActorUsername,
		"target": entry.TargetUsername,
		"type":   entry.Type,
	}).Info("Admin action")
}

func (s *AdminService) ListUsers(ctx context.Context, actorName string) ([]models.UserStats, error) {
	if _, err := s.actor(ctx, actorName, models.Role.CanAccessAdmin); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserStats, len(users))
	for i, u := range users {
		out[i] = u.Stats()
	}
	return out, nil
}

func (s *AdminService) GetUser(ctx context.Context, actorName, target string) (models.UserStats, error) {
	if _, err := s.actor(ctx, actorName, models.Role.CanAccessAdmin); err != nil {
		return models.UserStats{}, err
	}
	user, err := s.store.GetUser(ctx, target)
	if err != nil {
		return models.UserStats{}, err
	}
	return user.Stats(), nil
}

func (s *AdminService) SetRole(ctx context.Context, actorName, target, roleName string) (models.UserStats, error) {
	next, ok := models.ParseRole(roleName)
	if !ok {
		return models.UserStats{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, roleName)
	}
	actor, err := s.actor(ctx, actorName, models.Role.CanAccessAdmin)
	if err != nil {
		return models.UserStats{}, err
	}

	updated, err := s.store.UpdateUser(ctx, target, func(u *models.User) error {
		if !actor.Role.CanAssignRole(u.Role, next) {
			return ErrForbidden
		}
		u.SetRole(next)
		return nil
	})
	if err != nil {
		return models.UserStats{}, err
	}

	s.appendLog(ctx, &models.AdminLog{
		Type:              models.AdminLogRole,
		ActorUsername:     actor.Username,
		ActorDisplayName:  actor.DisplayName,
		TargetUsername:    updated.Username,
		TargetDisplayName: updated.DisplayName,
		Role:              string(next),
	})
	return updated.Stats(), nil
}

// Adjust applies a signed xp or money delta, flooring the result at zero.
func (s *AdminService) Adjust(ctx context.Context, actorName, target, adjustType string, value float64) (models.UserStats, error) {
	adjustType = strings.ToLower(strings.TrimSpace(adjustType))
	if adjustType != AdjustXP && adjustType != AdjustMoney {
		return models.UserStats{}, fmt.Errorf("%w: adjust type must be xp or money", ErrInvalidInput)
	}
	if !models.IsFinite(value) {
		return models.UserStats{}, ErrInvalidAmount
	}
	if adjustType == AdjustXP && math.Abs(value) > float64(models.MaxXP) {
		return models.UserStats{}, ErrInvalidAmount
	}
	actor, err := s.actor(ctx, actorName, models.Role.CanAdjustEconomy)
	if err != nil {
		return models.UserStats{}, err
	}

	var previousLevel int
	updated, err := s.store.UpdateUser(ctx, target, func(u *models.User) error {
		if !actor.Role.CanModify(u.Role) {
			return ErrForbidden
		}
		previousLevel = models.LevelForXP(u.XP)
		switch adjustType {
		case AdjustMoney:
			u.Balance = math.Max(0, u.Balance+value)
		case AdjustXP:
			u.SetXP(u.XP + int64(math.Round(value)))
		}
		return nil
	})
	if err != nil {
		return models.UserStats{}, err
	}

	v := value
	entry := &models.AdminLog{
		Type:              models.AdminLogAdjust,
		ActorUsername:     actor.Username,
		ActorDisplayName:  actor.DisplayName,
		TargetUsername:    updated.Username,
		TargetDisplayName: updated.DisplayName,
		AdjustType:        adjustType,
		Value:             &v,
	}
	if adjustType == AdjustXP {
		newLevel := updated.Level
		entry.NewLevel = &newLevel
		entry.PreviousLevel = &previousLevel
	}
	s.appendLog(ctx, entry)
	return updated.Stats(), nil
}

// Mute silences target in chat for minutes. Unmute clears any admin mute.
func (s *AdminService) Mute(ctx context.Context, actorName, target string, minutes float64) (models.UserStats, error) {
	if !models.IsFinite(minutes) || minutes <= 0 {
		return models.UserStats{}, fmt.Errorf("%w: minutes must be positive", ErrInvalidInput)
	}
	return s.setMute(ctx, actorName, target, minutes)
}

func (s *AdminService) Unmute(ctx context.Context, actorName, target string) (models.UserStats, error) {
	return s.setMute(ctx, actorName, target, 0)
}

func (s *AdminService) setMute(ctx context.Context, actorName, target string, minutes float64) (models.UserStats, error) {
	actor, err := s.actor(ctx, actorName, models.Role.CanAccessAdmin)
	if err != nil {
		return models.UserStats{}, err
	}

	now := s.now()
	updated, err := s.store.UpdateUser(ctx, target, func(u *models.User) error {
		if !actor.Role.CanMute(u.Role) {
			return ErrForbidden
		}
		if minutes <= 0 {
			u.ChatMutedUntil = nil
			return nil
		}
		until := now.Add(time.Duration(minutes * float64(time.Minute))).UnixMilli()
		u.ChatMutedUntil = &until
		return nil
	})
	if err != nil {
		return models.UserStats{}, err
	}

	entry := &models.AdminLog{
		Type:              models.AdminLogUnmute,
		ActorUsername:     actor.Username,
		ActorDisplayName:  actor.DisplayName,
		TargetUsername:    updated.Username,
		TargetDisplayName: updated.DisplayName,
	}
	if minutes > 0 {
		m := minutes
		entry.Type = models.AdminLogMute
		entry.Value = &m
	}
	s.appendLog(ctx, entry)
	return updated.Stats(), nil
}

func (s *AdminService) ChatLogs(ctx context.Context, actorName, target string) ([]models.ChatMessage, error) {
	if _, err := s.actor(ctx, actorName, models.Role.CanAccessAdmin); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, target); err != nil {
		return nil, err
	}
	return s.chat.MessagesBy(target), nil
}

func (s *AdminService) Logs(ctx context.Context, actorName string, limit int) ([]*models.AdminLog, error) {
	if _, err := s.actor(ctx, actorName, models.Role.CanReadLogs); err != nil {
		return nil, err
	}
	return s.store.AdminLogs(ctx, limit)
}

// CheckResetKey reports whether key matches the configured reset key. An
// unset key never matches.
func (s *AdminService) CheckResetKey(key string) bool {
	return s.resetKey != "" && key == s.resetKey
}

// Reset wipes all users, sessions and plinko statistics and drops the
// current roulette bets. actorName may be empty when the reset key was used.
func (s *AdminService) Reset(ctx context.Context, actorName string) error {
	entry := &models.AdminLog{Type: models.AdminLogReset}
	if actorName != "" {
		actor, err := s.store.GetUser(ctx, actorName)
		if err == nil {
			entry.ActorUsername = actor.Username
			entry.ActorDisplayName = actor.DisplayName
		}
	}

	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if s.roulette != nil {
		s.roulette.ResetBets()
	}

	s.appendLog(ctx, entry)
	log.Warn("Admin reset: all user data cleared")
	return nil
}
