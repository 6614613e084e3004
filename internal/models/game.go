package models

import "strconv"

type RoulettePhase string

const (
	PhaseBetting  RoulettePhase = "betting"
	PhaseSpinning RoulettePhase = "spinning"
	PhaseResult   RoulettePhase = "result"
)

// BetGroup is the strict-mode outside category of a bet key.
type BetGroup string

const (
	GroupStraight BetGroup = "straight"
	GroupDozen    BetGroup = "dozen"
	GroupHalf     BetGroup = "half"
	GroupParity   BetGroup = "parity"
	GroupColor    BetGroup = "color"
)

const (
	StraightMultiplier  = 36
	DozenMultiplier     = 3
	EvenMoneyMultiplier = 2
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func IsRed(n int) bool {
	return redNumbers[n]
}

// BetKeyInfo describes a valid roulette key.
type BetKeyInfo struct {
	Key        string
	Group      BetGroup
	Multiplier float64
	Number     int
}

// ParseBetKey validates key against the fixed taxonomy.
func ParseBetKey(key string) (BetKeyInfo, bool) {
	switch key {
	case "1-12", "13-24", "25-36":
		return BetKeyInfo{Key: key, Group: GroupDozen, Multiplier: DozenMultiplier, Number: -1}, true
	case "1-18", "19-36":
		return BetKeyInfo{Key: key, Group: GroupHalf, Multiplier: EvenMoneyMultiplier, Number: -1}, true
	case "odd", "even":
		return BetKeyInfo{Key: key, Group: GroupParity, Multiplier: EvenMoneyMultiplier, Number: -1}, true
	case "red", "black":
		return BetKeyInfo{Key: key, Group: GroupColor, Multiplier: EvenMoneyMultiplier, Number: -1}, true
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || n > 36 || strconv.Itoa(n) != key {
		return BetKeyInfo{}, false
	}
	return BetKeyInfo{Key: key, Group: GroupStraight, Multiplier: StraightMultiplier, Number: n}, true
}

// Covers reports whether the bet wins when the ball lands on n.
func (b BetKeyInfo) Covers(n int) bool {
	switch b.Key {
	case "1-12":
		return n >= 1 && n <= 12
	case "13-24":
		return n >= 13 && n <= 24
	case "25-36":
		return n >= 25 && n <= 36
	case "1-18":
		return n >= 1 && n <= 18
	case "19-36":
		return n >= 19 && n <= 36
	case "odd":
		return n != 0 && n%2 == 1
	case "even":
		return n != 0 && n%2 == 0
	case "red":
		return IsRed(n)
	case "black":
		return n != 0 && !IsRed(n)
	}
	return b.Group == GroupStraight && b.Number == n
}

type RouletteBet struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}

type RouletteWinner struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Amount      float64 `json:"amount"`
	Number      int     `json:"number"`
	RoundID     int64   `json:"roundId"`
	Timestamp   int64   `json:"timestamp"`
}

// RoundSnapshot is the public view of the shared roulette round.
type RoundSnapshot struct {
	RoundID      int64              `json:"roundId"`
	Phase        RoulettePhase      `json:"phase"`
	PhaseEndTime int64              `json:"phaseEndTime"`
	ServerTime   int64              `json:"serverTime"`
	WinNumber    *int               `json:"winNumber"`
	Balance      *float64           `json:"balance,omitempty"`
	MyBets       map[string]float64 `json:"myBets,omitempty"`
}
