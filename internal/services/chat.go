package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gambleio-server/internal/config"
	"gambleio-server/internal/models"

	log "github.com/sirupsen/logrus"
)

type senderState struct {
	lastAccepted   time.Time
	recent         []time.Time
	rateMutedUntil time.Time
}

// ChatService gates incoming messages and keeps the global history.
type ChatService struct {
	mu sync.Mutex

	store       UserStore
	cfg         config.ChatConfig
	broadcaster Broadcaster
	now         func() time.Time

	history []models.ChatMessage
	senders map[string]*senderState
}

func NewChatService(store UserStore, cfg config.ChatConfig, broadcaster Broadcaster) *ChatService {
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	return &ChatService{
		store:       store,
		cfg:         cfg,
		broadcaster: broadcaster,
		now:         time.Now,
		senders:     make(map[string]*senderState),
	}
}

func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b == nil {
		b = noopBroadcaster{}
	}
	s.broadcaster = b
}

// Post runs the moderation checks in order: admin mute, rate mute, minimum
// delay, burst. A message passing all of them is validated and stored.
func (s *ChatService) Post(ctx context.Context, username, text string) (models.ChatMessage, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return models.ChatMessage{}, err
	}

	now := s.now()
	if user.IsChatMuted(now) {
		return models.ChatMessage{}, s.reject(user.Username, &ChatRejection{
			Code:       CodeChatMuted,
			MutedUntil: *user.ChatMutedUntil,
			err:        ErrChatMuted,
		})
	}

	s.mu.Lock()
	state, ok := s.senders[user.Username]
	if !ok {
		state = &senderState{}
		s.senders[user.Username] = state
	}

	if now.Before(state.rateMutedUntil) {
		s.mu.Unlock()
		return models.ChatMessage{}, s.reject(user.Username, &ChatRejection{
			Code:       CodeChatRateMuted,
			MutedUntil: state.rateMutedUntil.UnixMilli(),
			err:        ErrChatRateMuted,
		})
	}

	if !state.lastAccepted.IsZero() {
		if since := now.Sub(state.lastAccepted); since < s.cfg.MinDelay {
			s.mu.Unlock()
			return models.ChatMessage{}, s.reject(user.Username, &ChatRejection{
				Code:         CodeChatDelay,
				RetryAfterMs: (s.cfg.MinDelay - since).Milliseconds(),
				err:          ErrChatTooFast,
			})
		}
	}

	cutoff := now.Add(-s.cfg.BurstWindow)
	kept := state.recent[:0]
	for _, t := range state.recent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	state.recent = kept
	if len(state.recent) >= s.cfg.BurstLimit {
		state.rateMutedUntil = now.Add(s.cfg.RateMuteDuration)
		s.mu.Unlock()
		return models.ChatMessage{}, s.reject(user.Username, &ChatRejection{
			Code:       CodeChatRateMuted,
			MutedUntil: state.rateMutedUntil.UnixMilli(),
			err:        ErrChatRateMuted,
		})
	}

	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > s.cfg.MaxLength {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrInvalidMessage
	}

	var role *models.Role
	if user.Role != models.RoleNone {
		r := user.Role
		role = &r
	}
	message := models.ChatMessage{
		ID:          models.GenerateMessageID(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        role,
		ProfileSlug: user.ProfileSlug,
		Text:        text,
		Timestamp:   now.UnixMilli(),
	}

	s.history = append(s.history, message)
	if len(s.history) > s.cfg.HistorySize {
		s.history = append([]models.ChatMessage(nil), s.history[len(s.history)-s.cfg.HistorySize:]...)
	}
	state.lastAccepted = now
	state.recent = append(state.recent, now)
	broadcaster := s.broadcaster
	s.mu.Unlock()

	broadcaster.BroadcastChatMessage(message)
	return message, nil
}

func (s *ChatService) reject(username string, r *ChatRejection) error {
	log.WithFields(log.Fields{
		"username": username,
		"code":     r.Code,
	}).Debug("Chat message rejected")
	return r
}

// Recent returns the newest messages in chronological order.
func (s *ChatService) Recent() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.history) > s.cfg.PublicLimit {
		start = len(s.history) - s.cfg.PublicLimit
	}
	out := make([]models.ChatMessage, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// MessagesBy returns the retained history of one sender.
func (s *ChatService) MessagesBy(username string) []models.ChatMessage {
	username = models.NormalizeUsername(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ChatMessage{}
	for _, m := range s.history {
		if m.Username == username {
			out = append(out, m)
		}
	}
	return out
}

// Reset forgets history and sender state.
func (s *ChatService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.senders = make(map[string]*senderState)
}
