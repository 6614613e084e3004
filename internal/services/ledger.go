package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"gambleio-server/internal/models"

	log "github.com/sirupsen/logrus"
)

const (
	MinBetAmount   = 0.01
	ClickCap       = 10000
	XPPerPlay      = 3
	XPPerProfitWin = 3
	XPPerClick     = 3
)

// WinInput carries the optional fields of a reported win. Nil means absent.
type WinInput struct {
	Amount     float64
	Multiplier *float64
	BetAmount  *float64
	Source     string
}

func trackedGame(source string) (models.GameSource, bool) {
	game, ok := models.ParseGameSource(source)
	if !ok || game == models.GameClick {
		return "", false
	}
	return game, true
}

// PlaceBet debits a wager. Nothing is changed when validation fails.
func PlaceBet(u *models.User, amount float64, source string) error {
	if !models.IsFinite(amount) || amount < MinBetAmount {
		return ErrInvalidAmount
	}
	if amount > u.Balance {
		return ErrInsufficientBalance
	}

	u.Balance -= amount
	u.TotalBets++
	if game, ok := trackedGame(source); ok {
		u.GameNet.Add(game, -amount)
		u.GamePlayCounts.Add(game, 1)
		u.XPBySource.Add(game, XPPerPlay)
	}
	return nil
}

// RecordWin credits a payout and, for profit wins, the win counters and
// biggest-win record.
func RecordWin(u *models.User, in WinInput, now time.Time) error {
	if !models.IsFinite(in.Amount) || in.Amount < 0 {
		return ErrInvalidAmount
	}
	if in.BetAmount != nil && !models.IsFinite(*in.BetAmount) {
		return ErrInvalidAmount
	}

	game, tracked := trackedGame(in.Source)

	u.Balance += in.Amount
	u.TotalGamblingWins += in.Amount
	if tracked {
		u.GameNet.Add(game, in.Amount)
	}

	profit := in.BetAmount == nil || in.Amount > *in.BetAmount
	if in.Amount <= 0 || !profit {
		return nil
	}

	var bet float64
	if in.BetAmount != nil {
		bet = *in.BetAmount
	}
	u.TotalWinsCount++
	u.TotalProfitWins += math.Max(0, in.Amount-bet)
	if tracked {
		u.XPBySource.Add(game, XPPerProfitWin)
	}

	if in.Amount > u.BiggestWinAmount {
		multiplier := 1.0
		if in.Multiplier != nil && models.IsFinite(*in.Multiplier) {
			multiplier = *in.Multiplier
		}
		u.BiggestWinAmount = in.Amount
		u.BiggestWinMultiplier = multiplier
		u.BiggestWinMeta = models.BiggestWinMeta{
			Game:       game,
			BetAmount:  bet,
			Multiplier: multiplier,
			Timestamp:  now.UnixMilli(),
		}
	}
	return nil
}

// Refund returns money without touching win or loss counters.
func Refund(u *models.User, amount float64) error {
	if !models.IsFinite(amount) || amount < 0 {
		return ErrInvalidAmount
	}
	u.Balance += amount
	return nil
}

// RecordClickEarnings applies a batch of clicker income, each input capped
// per call.
func RecordClickEarnings(u *models.User, amount, clicks float64) error {
	if !models.IsFinite(amount) || amount < 0 {
		return ErrInvalidAmount
	}
	if !models.IsFinite(clicks) || clicks < 0 {
		clicks = 0
	}

	capped := math.Min(amount, ClickCap)
	cappedClicks := int64(math.Floor(math.Min(clicks, ClickCap)))

	u.Balance += capped
	u.TotalClickEarnings += capped
	u.TotalClicks += cappedClicks
	u.GameNet.Add(models.GameClick, capped)
	u.GamePlayCounts.Add(models.GameClick, cappedClicks)
	u.XPBySource.Add(models.GameClick, cappedClicks*XPPerClick)
	return nil
}

// SetPlinkoRisk selects a risk tier, buying it first if it is still locked.
func SetPlinkoRisk(u *models.User, level models.RiskLevel, costs map[models.RiskLevel]float64) error {
	if !u.PlinkoRiskUnlocked.Has(level) {
		if prereq, ok := level.Prerequisite(); ok && !u.PlinkoRiskUnlocked.Has(prereq) {
			return ErrSequenceViolation
		}
		cost, ok := costs[level]
		if !ok {
			return ErrInvalidInput
		}
		if u.Balance < cost {
			return ErrInsufficientBalance
		}
		u.Balance -= cost
		u.PlinkoRiskUnlocked.Unlock(level)
	}
	u.PlinkoRiskLevel = level
	return nil
}

// LedgerService applies ledger operations to stored users atomically.
type LedgerService struct {
	store     Store
	riskCosts map[models.RiskLevel]float64
	now       func() time.Time
}

func NewLedgerService(store Store, riskCosts map[string]float64) *LedgerService {
	costs := make(map[models.RiskLevel]float64, len(models.DefaultRiskUnlockCosts))
	for level, cost := range models.DefaultRiskUnlockCosts {
		costs[level] = cost
	}
	for name, cost := range riskCosts {
		if level, ok := models.ParseRiskLevel(name); ok && level != models.RiskLow {
			costs[level] = cost
		}
	}
	return &LedgerService{store: store, riskCosts: costs, now: time.Now}
}

func (s *LedgerService) Stats(ctx context.Context, username string) (models.UserStats, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return models.UserStats{}, err
	}
	return user.Stats(), nil
}

func (s *LedgerService) PlaceBet(ctx context.Context, username string, amount float64, source string) (models.BetResponse, error) {
	user, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		return PlaceBet(u, amount, source)
	})
	if err != nil {
		return models.BetResponse{}, fmt.Errorf("place bet: %w", err)
	}
	return models.BetResponse{Balance: user.Balance, TotalBets: user.TotalBets}, nil
}

func (s *LedgerService) RecordWin(ctx context.Context, username string, in WinInput) (models.WinResponse, error) {
	now := s.now()
	user, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		return RecordWin(u, in, now)
	})
	if err != nil {
		return models.WinResponse{}, fmt.Errorf("record win: %w", err)
	}
	return models.WinResponse{
		Balance:              user.Balance,
		TotalGamblingWins:    user.TotalGamblingWins,
		TotalWinsCount:       user.TotalWinsCount,
		BiggestWinAmount:     user.BiggestWinAmount,
		BiggestWinMultiplier: user.BiggestWinMultiplier,
	}, nil
}

func (s *LedgerService) Refund(ctx context.Context, username string, amount float64) (float64, error) {
	user, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		return Refund(u, amount)
	})
	if err != nil {
		return 0, fmt.Errorf("refund: %w", err)
	}
	return user.Balance, nil
}

func (s *LedgerService) RecordClickEarnings(ctx context.Context, username string, amount, clicks float64) (models.ClickEarningsResponse, error) {
	user, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		return RecordClickEarnings(u, amount, clicks)
	})
	if err != nil {
		return models.ClickEarningsResponse{}, fmt.Errorf("click earnings: %w", err)
	}
	return models.ClickEarningsResponse{
		Balance:            user.Balance,
		TotalClickEarnings: user.TotalClickEarnings,
		TotalClicks:        user.TotalClicks,
	}, nil
}

func (s *LedgerService) SetPlinkoRisk(ctx context.Context, username, level string) (models.RiskLevelResponse, error) {
	risk, ok := models.ParseRiskLevel(level)
	if !ok {
		return models.RiskLevelResponse{}, ErrInvalidInput
	}

	user, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		return SetPlinkoRisk(u, risk, s.riskCosts)
	})
	if err != nil {
		return models.RiskLevelResponse{}, fmt.Errorf("set plinko risk: %w", err)
	}
	return models.RiskLevelResponse{
		Balance:            user.Balance,
		PlinkoRiskLevel:    user.PlinkoRiskLevel,
		PlinkoRiskUnlocked: user.PlinkoRiskUnlocked,
	}, nil
}

// StatsUpdate is a client-side progress sync. xp is trusted as reported and
// the level is derived from it; the reported level only decides whether a
// level-up is logged.
type StatsUpdate struct {
	Level                *float64
	XP                   *float64
	BiggestWinAmount     *float64
	BiggestWinMultiplier *float64
}

func (s *LedgerService) UpdateStats(ctx context.Context, username string, in StatsUpdate) error {
	for _, v := range []*float64{in.Level, in.XP, in.BiggestWinAmount, in.BiggestWinMultiplier} {
		if v != nil && !models.IsFinite(*v) {
			return ErrInvalidInput
		}
	}
	if in.XP != nil && math.Abs(*in.XP) > float64(models.MaxXP) {
		return fmt.Errorf("%w: xp out of range", ErrInvalidInput)
	}

	var previousLevel int
	user, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		previousLevel = models.LevelForXP(u.XP)
		if in.XP != nil {
			u.SetXP(int64(math.Floor(*in.XP)))
		}
		if in.BiggestWinAmount != nil && *in.BiggestWinAmount > u.BiggestWinAmount {
			multiplier := 1.0
			if in.BiggestWinMultiplier != nil && *in.BiggestWinMultiplier > 0 {
				multiplier = *in.BiggestWinMultiplier
			}
			u.BiggestWinAmount = *in.BiggestWinAmount
			u.BiggestWinMultiplier = multiplier
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	newLevel := user.Level
	if in.Level != nil {
		reported := int(math.Min(math.Max(*in.Level, 0), float64(models.MaxLevel)))
		newLevel = max(newLevel, reported)
	}
	if newLevel > previousLevel {
		entry := &models.AdminLog{
			ID:                models.GenerateLogID(),
			Type:              models.AdminLogLevelUp,
			Timestamp:         s.now().UnixMilli(),
			TargetUsername:    user.Username,
			TargetDisplayName: user.DisplayName,
			NewLevel:          &newLevel,
			PreviousLevel:     &previousLevel,
		}
		if err := s.store.AppendAdminLog(ctx, entry); err != nil {
			log.WithError(err).WithField("username", user.Username).Warn("Failed to append level-up log")
		}
	}
	return nil
}

func (s *LedgerService) AcceptChatRules(ctx context.Context, username string) error {
	_, err := s.store.UpdateUser(ctx, username, func(u *models.User) error {
		u.ChatRulesAccepted = true
		return nil
	})
	return err
}
