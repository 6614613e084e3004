package models

// UserStats is the client-facing projection of a User. It never carries the
// password hash and always reports the level derived from xp.
type UserStats struct {
	Username             string           `json:"username"`
	ProfileSlug          string           `json:"profileSlug"`
	DisplayName          string           `json:"displayName"`
	Role                 *Role            `json:"role"`
	IsOwner              bool             `json:"isOwner"`
	IsAdmin              bool             `json:"isAdmin"`
	Balance              float64          `json:"balance"`
	TotalBets            int64            `json:"totalBets"`
	TotalGamblingWins    float64          `json:"totalGamblingWins"`
	TotalProfitWins      float64          `json:"totalProfitWins"`
	TotalWinsCount       int64            `json:"totalWinsCount"`
	TotalClickEarnings   float64          `json:"totalClickEarnings"`
	TotalClicks          int64            `json:"totalClicks"`
	XP                   int64            `json:"xp"`
	Level                int              `json:"level"`
	BiggestWinAmount     float64          `json:"biggestWinAmount"`
	BiggestWinMultiplier float64          `json:"biggestWinMultiplier"`
	BiggestWinMeta       BiggestWinMeta   `json:"biggestWinMeta"`
	GameNet              PerGame[float64] `json:"gameNet"`
	GamePlayCounts       PerGame[int64]   `json:"gamePlayCounts"`
	XPBySource           PerGame[int64]   `json:"xpBySource"`
	PlinkoRiskLevel      RiskLevel        `json:"plinkoRiskLevel"`
	PlinkoRiskUnlocked   RiskUnlocks      `json:"plinkoRiskUnlocked"`
	ChatMutedUntil       *int64           `json:"chatMutedUntil"`
	ChatRulesAccepted    bool             `json:"chatRulesAccepted"`
	CreatedAt            int64            `json:"createdAt"`
}

func (u *User) Stats() UserStats {
	var role *Role
	if u.Role != RoleNone {
		r := u.Role
		role = &r
	}
	return UserStats{
		Username:             u.Username,
		ProfileSlug:          u.ProfileSlug,
		DisplayName:          u.DisplayName,
		Role:                 role,
		IsOwner:              u.IsOwner,
		IsAdmin:              u.IsAdmin,
		Balance:              u.Balance,
		TotalBets:            u.TotalBets,
		TotalGamblingWins:    u.TotalGamblingWins,
		TotalProfitWins:      u.TotalProfitWins,
		TotalWinsCount:       u.TotalWinsCount,
		TotalClickEarnings:   u.TotalClickEarnings,
		TotalClicks:          u.TotalClicks,
		XP:                   u.XP,
		Level:                LevelForXP(u.XP),
		BiggestWinAmount:     u.BiggestWinAmount,
		BiggestWinMultiplier: u.BiggestWinMultiplier,
		BiggestWinMeta:       u.BiggestWinMeta,
		GameNet:              u.GameNet,
		GamePlayCounts:       u.GamePlayCounts,
		XPBySource:           u.XPBySource,
		PlinkoRiskLevel:      u.PlinkoRiskLevel,
		PlinkoRiskUnlocked:   u.PlinkoRiskUnlocked,
		ChatMutedUntil:       u.ChatMutedUntil,
		ChatRulesAccepted:    u.ChatRulesAccepted,
		CreatedAt:            u.CreatedAt,
	}
}

type BetResponse struct {
	Balance   float64 `json:"balance"`
	TotalBets int64   `json:"totalBets"`
}

type WinResponse struct {
	Balance              float64 `json:"balance"`
	TotalGamblingWins    float64 `json:"totalGamblingWins"`
	TotalWinsCount       int64   `json:"totalWinsCount"`
	BiggestWinAmount     float64 `json:"biggestWinAmount"`
	BiggestWinMultiplier float64 `json:"biggestWinMultiplier"`
}

type ClickEarningsResponse struct {
	Balance            float64 `json:"balance"`
	TotalClickEarnings float64 `json:"totalClickEarnings"`
	TotalClicks        int64   `json:"totalClicks"`
}

type RiskLevelResponse struct {
	Balance            float64     `json:"balance"`
	PlinkoRiskLevel    RiskLevel   `json:"plinkoRiskLevel"`
	PlinkoRiskUnlocked RiskUnlocks `json:"plinkoRiskUnlocked"`
}

// PublicProfile is what any visitor may see of another player. It carries no
// balance, credentials or moderation state.
type PublicProfile struct {
	ProfileSlug          string  `json:"profileSlug"`
	DisplayName          string  `json:"displayName"`
	Role                 *Role   `json:"role"`
	IsOwner              bool    `json:"isOwner"`
	XP                   int64   `json:"xp"`
	Level                int     `json:"level"`
	TotalBets            int64   `json:"totalBets"`
	TotalGamblingWins    float64 `json:"totalGamblingWins"`
	TotalWinsCount       int64   `json:"totalWinsCount"`
	BiggestWinAmount     float64 `json:"biggestWinAmount"`
	BiggestWinMultiplier float64 `json:"biggestWinMultiplier"`
	CreatedAt            int64   `json:"createdAt"`
}

func (u *User) PublicProfile() PublicProfile {
	var role *Role
	if u.Role != RoleNone {
		r := u.Role
		role = &r
	}
	return PublicProfile{
		ProfileSlug:          u.ProfileSlug,
		DisplayName:          u.DisplayName,
		Role:                 role,
		IsOwner:              u.IsOwner,
		XP:                   u.XP,
		Level:                LevelForXP(u.XP),
		TotalBets:            u.TotalBets,
		TotalGamblingWins:    u.TotalGamblingWins,
		TotalWinsCount:       u.TotalWinsCount,
		BiggestWinAmount:     u.BiggestWinAmount,
		BiggestWinMultiplier: u.BiggestWinMultiplier,
		CreatedAt:            u.CreatedAt,
	}
}
