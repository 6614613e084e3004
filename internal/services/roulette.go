package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"gambleio-server/internal/config"
	"gambleio-server/internal/models"

	log "github.com/sirupsen/logrus"
)

// RouletteEngine owns the single shared roulette round. All state is guarded
// by mu; the lock is also held across the balance writes of bet placement and
// resolution so a round can never be resolved while a bet is half placed.
type RouletteEngine struct {
	mu sync.Mutex

	store       UserStore
	cfg         config.RouletteConfig
	broadcaster Broadcaster
	now         func() time.Time
	draw        func() int

	roundID      int64
	phase        models.RoulettePhase
	phaseEnd     time.Time
	winNumber    *int
	bets         map[string][]models.RouletteBet
	winners      []models.RouletteWinner
	resolvedUpTo int64
}

type EngineOption func(*RouletteEngine)

// WithClock replaces time.Now for the engine.
func WithClock(now func() time.Time) EngineOption {
	return func(e *RouletteEngine) { e.now = now }
}

// WithDraw replaces the uniform 0..36 draw.
func WithDraw(draw func() int) EngineOption {
	return func(e *RouletteEngine) { e.draw = draw }
}

func WithBroadcaster(b Broadcaster) EngineOption {
	return func(e *RouletteEngine) {
		if b != nil {
			e.broadcaster = b
		}
	}
}

func NewRouletteEngine(store UserStore, cfg config.RouletteConfig, opts ...EngineOption) *RouletteEngine {
	e := &RouletteEngine{
		store:       store,
		cfg:         cfg,
		broadcaster: noopBroadcaster{},
		now:         time.Now,
		draw:        func() int { return rand.Intn(37) },
		roundID:     1,
		phase:       models.PhaseBetting,
		bets:        make(map[string][]models.RouletteBet),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.phaseEnd = e.now().Add(cfg.BettingDuration)
	return e
}

// SetBroadcaster attaches the push target once the hub exists.
func (e *RouletteEngine) SetBroadcaster(b Broadcaster) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b == nil {
		b = noopBroadcaster{}
	}
	e.broadcaster = b
}

// Run drives the round on a ticker until ctx is cancelled.
func (e *RouletteEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"round_id": e.RoundID(),
		"tick":     e.cfg.TickInterval,
	}).Info("Roulette engine started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Roulette engine stopped")
			return
		case <-ticker.C:
			e.Tick(ctx, e.now())
		}
	}
}

// Tick performs at most one phase transition if the current phase has
// elapsed at now. It reports whether a transition happened.
func (e *RouletteEngine) Tick(ctx context.Context, now time.Time) bool {
	e.mu.Lock()
	if now.Before(e.phaseEnd) {
		e.mu.Unlock()
		return false
	}

	switch e.phase {
	case models.PhaseBetting:
		n := e.draw()
		if n < 0 || n > 36 {
			n = ((n % 37) + 37) % 37
		}
		e.winNumber = &n
		e.phase = models.PhaseSpinning
		e.phaseEnd = now.Add(e.cfg.SpinningDuration)

	case models.PhaseSpinning:
		if e.resolvedUpTo < e.roundID {
			e.resolve(ctx, now)
			e.resolvedUpTo = e.roundID
		}
		e.phase = models.PhaseResult
		e.phaseEnd = now.Add(e.cfg.ResultDuration)

	case models.PhaseResult:
		e.roundID++
		e.bets = make(map[string][]models.RouletteBet)
		e.winners = nil
		e.winNumber = nil
		e.phase = models.PhaseBetting
		e.phaseEnd = now.Add(e.cfg.BettingDuration)
	}

	snapshot := e.snapshotLocked(now)
	broadcaster := e.broadcaster
	e.mu.Unlock()

	fields := log.Fields{"round_id": snapshot.RoundID, "phase": snapshot.Phase}
	if snapshot.WinNumber != nil {
		fields["win_number"] = *snapshot.WinNumber
	}
	log.WithFields(fields).Debug("Roulette phase changed")

	broadcaster.BroadcastRoundUpdate(snapshot)
	return true
}

type roundPayout struct {
	username   string
	amount     float64
	multiplier float64
	totalBet   float64
	bets       map[string]float64
}

// resolve pays every bettor of the current round. Only the single best
// winning key pays out for each user. Caller holds mu.
func (e *RouletteEngine) resolve(ctx context.Context, now time.Time) {
	if e.winNumber == nil {
		return
	}
	win := *e.winNumber

	usernames := make([]string, 0, len(e.bets))
	for username := range e.bets {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	var payouts []roundPayout
	for _, username := range usernames {
		bets := e.bets[username]
		if len(bets) == 0 {
			continue
		}

		p := roundPayout{username: username, bets: aggregateBets(bets)}
		for key, amount := range p.bets {
			p.totalBet += amount
			info, ok := models.ParseBetKey(key)
			if !ok || !info.Covers(win) {
				continue
			}
			if payout := amount * info.Multiplier; payout > p.amount {
				p.amount = payout
				p.multiplier = info.Multiplier
			}
		}
		if p.amount > 0 {
			payouts = append(payouts, p)
		}
	}

	var paid float64
	for _, p := range payouts {
		totalBet := p.totalBet
		multiplier := p.multiplier
		user, err := e.store.UpdateUser(ctx, p.username, func(u *models.User) error {
			return RecordWin(u, WinInput{
				Amount:     p.amount,
				Multiplier: &multiplier,
				BetAmount:  &totalBet,
				Source:     string(models.GameRoulette),
			}, now)
		})
		if err != nil {
			// The stakes are already debited; operators refund from this entry.
			log.WithFields(log.Fields{
				"round_id":   e.roundID,
				"win_number": win,
				"username":   p.username,
				"amount":     p.amount,
				"multiplier": p.multiplier,
				"total_bet":  p.totalBet,
				"bets":       p.bets,
			}).WithError(err).Error("Failed to pay roulette winner")
			continue
		}

		paid += p.amount
		e.winners = append([]models.RouletteWinner{{
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Amount:      p.amount,
			Number:      win,
			RoundID:     e.roundID,
			Timestamp:   now.UnixMilli(),
		}}, e.winners...)
	}
	if limit := e.cfg.RecentWinners; limit > 0 && len(e.winners) > limit {
		e.winners = e.winners[:limit]
	}

	log.WithFields(log.Fields{
		"round_id":   e.roundID,
		"win_number": win,
		"bettors":    len(usernames),
		"winners":    len(payouts),
		"paid":       paid,
	}).Info("Roulette round resolved")
}

func aggregateBets(bets []models.RouletteBet) map[string]float64 {
	out := make(map[string]float64, len(bets))
	for _, b := range bets {
		out[b.Key] += b.Amount
	}
	return out
}

// PlaceBet debits amount and records it against key for the current round.
func (e *RouletteEngine) PlaceBet(ctx context.Context, username, key string, amount float64) (models.BetResponse, error) {
	info, ok := models.ParseBetKey(key)
	if !ok {
		return models.BetResponse{}, fmt.Errorf("%w: unknown bet key %q", ErrInvalidInput, key)
	}
	if !models.IsFinite(amount) || amount < e.cfg.MinBet {
		return models.BetResponse{}, ErrInvalidAmount
	}
	username = models.NormalizeUsername(username)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != models.PhaseBetting {
		return models.BetResponse{}, ErrBettingClosed
	}
	if info.Group != models.GroupStraight {
		for _, b := range e.bets[username] {
			existing, _ := models.ParseBetKey(b.Key)
			if existing.Group == info.Group && existing.Key != info.Key {
				return models.BetResponse{}, ErrBetConflict
			}
		}
	}

	user, err := e.store.UpdateUser(ctx, username, func(u *models.User) error {
		return PlaceBet(u, amount, string(models.GameRoulette))
	})
	if err != nil {
		return models.BetResponse{}, err
	}

	e.bets[username] = append(e.bets[username], models.RouletteBet{Key: info.Key, Amount: amount})
	return models.BetResponse{Balance: user.Balance, TotalBets: user.TotalBets}, nil
}

// ClearBets refunds every pending bet of username in the current round.
func (e *RouletteEngine) ClearBets(ctx context.Context, username string) (balance, refunded float64, err error) {
	username = models.NormalizeUsername(username)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != models.PhaseBetting {
		return 0, 0, ErrBettingClosed
	}

	for _, b := range e.bets[username] {
		refunded += b.Amount
	}

	var user *models.User
	if refunded > 0 {
		user, err = e.store.UpdateUser(ctx, username, func(u *models.User) error {
			return Refund(u, refunded)
		})
	} else {
		user, err = e.store.GetUser(ctx, username)
	}
	if err != nil {
		return 0, 0, err
	}

	delete(e.bets, username)
	return user.Balance, refunded, nil
}

// ResetBets drops every pending bet without refunds. Used after a full data wipe.
func (e *RouletteEngine) ResetBets() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bets = make(map[string][]models.RouletteBet)
	e.winners = nil
}

func (e *RouletteEngine) snapshotLocked(now time.Time) models.RoundSnapshot {
	var win *int
	if e.winNumber != nil {
		n := *e.winNumber
		win = &n
	}
	return models.RoundSnapshot{
		RoundID:      e.roundID,
		Phase:        e.phase,
		PhaseEndTime: e.phaseEnd.UnixMilli(),
		ServerTime:   now.UnixMilli(),
		WinNumber:    win,
	}
}

func (e *RouletteEngine) Snapshot() models.RoundSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.now())
}

// SnapshotFor adds the caller's balance and per-key bets to the round view.
func (e *RouletteEngine) SnapshotFor(ctx context.Context, username string) (models.RoundSnapshot, error) {
	username = models.NormalizeUsername(username)

	e.mu.Lock()
	snapshot := e.snapshotLocked(e.now())
	mine := aggregateBets(e.bets[username])
	e.mu.Unlock()

	user, err := e.store.GetUser(ctx, username)
	if err != nil {
		return snapshot, err
	}
	balance := user.Balance
	snapshot.Balance = &balance
	snapshot.MyBets = mine
	return snapshot, nil
}

func (e *RouletteEngine) RoundID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roundID
}

func (e *RouletteEngine) Phase() models.RoulettePhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Winners returns the recent winners, newest first.
func (e *RouletteEngine) Winners() []models.RouletteWinner {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.RouletteWinner, len(e.winners))
	copy(out, e.winners)
	return out
}

// AllBets totals the current round's bets per key across every user.
func (e *RouletteEngine) AllBets() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64)
	for _, bets := range e.bets {
		for _, b := range bets {
			out[b.Key] += b.Amount
		}
	}
	return out
}

// UserBets returns the pending bets of username in placement order.
func (e *RouletteEngine) UserBets(username string) []models.RouletteBet {
	e.mu.Lock()
	defer e.mu.Unlock()
	bets := e.bets[models.NormalizeUsername(username)]
	out := make([]models.RouletteBet, len(bets))
	copy(out, bets)
	return out
}
