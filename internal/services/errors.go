package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSequenceViolation   = errors.New("previous risk tier must be unlocked first")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("wrong password")
	ErrBettingClosed       = errors.New("betting is closed for this round")
	ErrBetConflict         = errors.New("conflicting bet in the same group")
	ErrStoreConflict       = errors.New("concurrent update conflict")

	ErrChatMuted      = errors.New("you are muted")
	ErrChatRateMuted  = errors.New("you are sending messages too quickly")
	ErrChatTooFast    = errors.New("please wait before sending another message")
	ErrInvalidMessage = errors.New("message must be 1-500 characters")
)

// Chat rejection codes returned to clients for UI branching.
const (
	CodeChatMuted     = "CHAT_MUTED"
	CodeChatRateMuted = "CHAT_RATE_MUTED"
	CodeChatDelay     = "CHAT_DELAY"
)

// ChatRejection explains why the moderation gate refused a message.
type ChatRejection struct {
	Code         string
	MutedUntil   int64
	RetryAfterMs int64
	err          error
}

func (r *ChatRejection) Error() string {
	switch r.Code {
	case CodeChatDelay:
		return fmt.Sprintf("%v (retry in %dms)", r.err, r.RetryAfterMs)
	default:
		return r.err.Error()
	}
}

func (r *ChatRejection) Unwrap() error {
	return r.err
}
