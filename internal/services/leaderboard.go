package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"gambleio-server/internal/models"
)

const LeaderboardSize = 100

type LeaderboardType string

const (
	BoardClicks     LeaderboardType = "clicks"
	BoardWins       LeaderboardType = "wins"
	BoardBiggestWin LeaderboardType = "biggest-win"
	BoardNetWorth   LeaderboardType = "networth"
	BoardXP         LeaderboardType = "xp"
	BoardLevel      LeaderboardType = "level"
)

func ParseLeaderboardType(s string) (LeaderboardType, bool) {
	switch t := LeaderboardType(s); t {
	case BoardClicks, BoardWins, BoardBiggestWin, BoardNetWorth, BoardXP, BoardLevel:
		return t, true
	}
	return "", false
}

type LeaderboardEntry struct {
	Rank                 int          `json:"rank"`
	Username             string       `json:"username"`
	DisplayName          string       `json:"displayName"`
	ProfileSlug          string       `json:"profileSlug"`
	Role                 *models.Role `json:"role"`
	Level                int          `json:"level"`
	XP                   int64        `json:"xp"`
	Balance              float64      `json:"balance"`
	TotalClicks          int64        `json:"totalClicks"`
	TotalGamblingWins    float64      `json:"totalGamblingWins"`
	TotalWinsCount       int64        `json:"totalWinsCount"`
	BiggestWinAmount     float64      `json:"biggestWinAmount"`
	BiggestWinMultiplier float64      `json:"biggestWinMultiplier"`
}

type GamePlays struct {
	Game  models.GameSource `json:"game"`
	Plays int64             `json:"plays"`
}

type LeaderboardDetail struct {
	LeaderboardEntry
	AvgClicksPerDay float64                 `json:"avgClicksPerDay"`
	TopGames        []GamePlays             `json:"topGames"`
	GameNet         models.PerGame[float64] `json:"gameNet"`
	BiggestWinMeta  models.BiggestWinMeta   `json:"biggestWinMeta"`
	CreatedAt       int64                   `json:"createdAt"`
}

type LeaderboardService struct {
	store UserStore
	now   func() time.Time
}

func NewLeaderboardService(store UserStore) *LeaderboardService {
	return &LeaderboardService{store: store, now: time.Now}
}

func toEntry(u *models.User) LeaderboardEntry {
	var role *models.Role
	if u.Role != models.RoleNone {
		r := u.Role
		role = &r
	}
	return LeaderboardEntry{
		Username:             u.Username,
		DisplayName:          u.DisplayName,
		ProfileSlug:          u.ProfileSlug,
		Role:                 role,
		Level:                models.LevelForXP(u.XP),
		XP:                   u.XP,
		Balance:              u.Balance,
		TotalClicks:          u.TotalClicks,
		TotalGamblingWins:    u.TotalGamblingWins,
		TotalWinsCount:       u.TotalWinsCount,
		BiggestWinAmount:     u.BiggestWinAmount,
		BiggestWinMultiplier: u.BiggestWinMultiplier,
	}
}

func less(board LeaderboardType, a, b LeaderboardEntry) bool {
	var x, y float64
	switch board {
	case BoardClicks:
		x, y = float64(a.TotalClicks), float64(b.TotalClicks)
	case BoardWins:
		x, y = a.TotalGamblingWins, b.TotalGamblingWins
	case BoardBiggestWin:
		x, y = a.BiggestWinAmount, b.BiggestWinAmount
	case BoardNetWorth:
		x, y = a.Balance, b.Balance
	case BoardXP:
		x, y = float64(a.XP), float64(b.XP)
	case BoardLevel:
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		x, y = float64(a.XP), float64(b.XP)
	}
	if x != y {
		return x > y
	}
	return a.Username < b.Username
}

func (s *LeaderboardService) ranked(ctx context.Context, board LeaderboardType) ([]LeaderboardEntry, []*models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = toEntry(u)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return less(board, entries[i], entries[j])
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, users, nil
}

// Top returns the first LeaderboardSize rows for board.
func (s *LeaderboardService) Top(ctx context.Context, board LeaderboardType) ([]LeaderboardEntry, error) {
	entries, _, err := s.ranked(ctx, board)
	if err != nil {
		return nil, err
	}
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries, nil
}

// Profile returns the public view of the player behind slug.
func (s *LeaderboardService) Profile(ctx context.Context, slug string) (models.PublicProfile, error) {
	user, err := s.store.GetUserBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return models.PublicProfile{}, err
	}
	return user.PublicProfile(), nil
}

// UserDetail ranks the profile identified by slug within board.
func (s *LeaderboardService) UserDetail(ctx context.Context, board LeaderboardType, slug string) (LeaderboardDetail, error) {
	target, err := s.store.GetUserBySlug(ctx, slug)
	if err != nil {
		return LeaderboardDetail{}, err
	}

	entries, _, err := s.ranked(ctx, board)
	if err != nil {
		return LeaderboardDetail{}, err
	}

	entry := toEntry(target)
	for _, e := range entries {
		if e.Username == target.Username {
			entry = e
			break
		}
	}

	days := s.now().Sub(time.UnixMilli(target.AnalyticsStartedAt)).Hours() / 24
	days = math.Max(1, math.Floor(days))

	return LeaderboardDetail{
		LeaderboardEntry: entry,
		AvgClicksPerDay:  float64(target.TotalClicks) / days,
		TopGames:         topGames(target.GamePlayCounts, 3),
		GameNet:          target.GameNet,
		BiggestWinMeta:   target.BiggestWinMeta,
		CreatedAt:        target.CreatedAt,
	}, nil
}

// topGames lists the most played games, ignoring the clicker and unplayed games.
func topGames(counts models.PerGame[int64], n int) []GamePlays {
	games := []GamePlays{
		{Game: models.GamePlinko, Plays: counts.Plinko},
		{Game: models.GameRoulette, Plays: counts.Roulette},
		{Game: models.GameSlots, Plays: counts.Slots},
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Plays > games[j].Plays
	})

	out := []GamePlays{}
	for _, g := range games {
		if g.Plays > 0 && len(out) < n {
			out = append(out, g)
		}
	}
	return out
}
