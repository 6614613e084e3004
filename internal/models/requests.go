package models

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateStatsRequest struct {
	Level                *float64 `json:"level"`
	XP                   *float64 `json:"xp"`
	BiggestWinAmount     *float64 `json:"biggestWinAmount"`
	BiggestWinMultiplier *float64 `json:"biggestWinMultiplier"`
}

type BetRequest struct {
	Amount *float64 `json:"amount"`
	Source string   `json:"source"`
}

type WinRequest struct {
	Amount     *float64 `json:"amount"`
	Multiplier *float64 `json:"multiplier"`
	BetAmount  *float64 `json:"betAmount"`
	Source     string   `json:"source"`
}

type RefundRequest struct {
	Amount *float64 `json:"amount"`
}

type ClickEarningsRequest struct {
	Amount     *float64 `json:"amount"`
	ClickCount *float64 `json:"clickCount"`
}

type RiskLevelRequest struct {
	Level string `json:"level"`
}

type PlinkoLandRequest struct {
	SlotIndex  *int     `json:"slotIndex"`
	Bet        *float64 `json:"bet"`
	Multiplier *float64 `json:"multiplier"`
}

type RouletteBetRequest struct {
	Key    string   `json:"key"`
	Amount *float64 `json:"amount"`
}

type ChatPostRequest struct {
	Text string `json:"text"`
}

type RoleRequest struct {
	Role *string `json:"role"`
}

type AdjustRequest struct {
	Type  string   `json:"type"`
	Value *float64 `json:"value"`
}

type MuteRequest struct {
	Minutes *float64 `json:"minutes"`
	Unmute  bool     `json:"unmute"`
}

type ResetRequest struct {
	Key string `json:"key"`
}
