package models

import (
	"strings"
	"time"
)

const DefaultStartingBalance = 10000

type BiggestWinMeta struct {
	Game       GameSource `json:"game"`
	BetAmount  float64    `json:"betAmount"`
	Multiplier float64    `json:"multiplier"`
	Timestamp  int64      `json:"timestamp"`
}

// User is the persisted record of one player, keyed by its normalized username.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	ProfileSlug  string `json:"profileSlug"`
	DisplayName  string `json:"displayName"`
	Role         Role   `json:"role"`
	IsOwner      bool   `json:"isOwner"`
	IsAdmin      bool   `json:"isAdmin"`

	Balance            float64 `json:"balance"`
	TotalBets          int64   `json:"totalBets"`
	TotalGamblingWins  float64 `json:"totalGamblingWins"`
	TotalProfitWins    float64 `json:"totalProfitWins"`
	TotalWinsCount     int64   `json:"totalWinsCount"`
	TotalClickEarnings float64 `json:"totalClickEarnings"`
	TotalClicks        int64   `json:"totalClicks"`

	XP    int64 `json:"xp"`
	Level int   `json:"level"`

	BiggestWinAmount     float64        `json:"biggestWinAmount"`
	BiggestWinMultiplier float64        `json:"biggestWinMultiplier"`
	BiggestWinMeta       BiggestWinMeta `json:"biggestWinMeta"`

	GameNet        PerGame[float64] `json:"gameNet"`
	GamePlayCounts PerGame[int64]   `json:"gamePlayCounts"`
	XPBySource     PerGame[int64]   `json:"xpBySource"`

	PlinkoRiskLevel    RiskLevel   `json:"plinkoRiskLevel"`
	PlinkoRiskUnlocked RiskUnlocks `json:"plinkoRiskUnlocked"`

	ChatMutedUntil    *int64 `json:"chatMutedUntil"`
	ChatRulesAccepted bool   `json:"chatRulesAccepted"`

	CreatedAt          int64 `json:"createdAt"`
	AnalyticsStartedAt int64 `json:"analyticsStartedAt"`
}

// NormalizeUsername produces the store key for a username or email.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewUser builds a record with every default applied once.
func NewUser(username, displayName, passwordHash string, startingBalance float64, now time.Time) *User {
	display := strings.TrimSpace(displayName)
	if display == "" {
		display = strings.TrimSpace(username)
	}
	ms := now.UnixMilli()
	return &User{
		Username:             NormalizeUsername(username),
		PasswordHash:         passwordHash,
		ProfileSlug:          GenerateProfileSlug(),
		DisplayName:          display,
		Balance:              startingBalance,
		XP:                   0,
		Level:                1,
		BiggestWinMultiplier: 1,
		BiggestWinMeta:       BiggestWinMeta{Multiplier: 1},
		PlinkoRiskLevel:      RiskLow,
		CreatedAt:            ms,
		AnalyticsStartedAt:   ms,
	}
}

// SetRole keeps the denormalized owner/admin flags in line with the role.
func (u *User) SetRole(r Role) {
	u.Role = r
	u.IsOwner = r == RoleOwner
	u.IsAdmin = r == RoleOwner || r == RoleAdmin
}

// SetXP stores xp clamped to [0, MaxXP] and re-derives the level from it.
func (u *User) SetXP(xp int64) {
	if xp < 0 {
		xp = 0
	}
	if xp > MaxXP {
		xp = MaxXP
	}
	u.XP = xp
	u.Level = LevelForXP(xp)
}

func (u *User) IsChatMuted(now time.Time) bool {
	return u.ChatMutedUntil != nil && *u.ChatMutedUntil > now.UnixMilli()
}

func (u *User) Clone() *User {
	c := *u
	if u.ChatMutedUntil != nil {
		v := *u.ChatMutedUntil
		c.ChatMutedUntil = &v
	}
	return &c
}
