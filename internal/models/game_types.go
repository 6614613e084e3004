package models

import "strings"

type GameSource string

const (
	GameClick    GameSource = "click"
	GamePlinko   GameSource = "plinko"
	GameRoulette GameSource = "roulette"
	GameSlots    GameSource = "slots"
)

// ParseGameSource returns the tracked game for s. Unknown or empty sources
// are reported as not tracked.
func ParseGameSource(s string) (GameSource, bool) {
	switch GameSource(strings.ToLower(strings.TrimSpace(s))) {
	case GameClick:
		return GameClick, true
	case GamePlinko:
		return GamePlinko, true
	case GameRoulette:
		return GameRoulette, true
	case GameSlots:
		return GameSlots, true
	}
	return "", false
}

// PerGame is the fixed four-key breakdown used for net, play counts and xp.
type PerGame[T int64 | float64] struct {
	Click    T `json:"click"`
	Plinko   T `json:"plinko"`
	Roulette T `json:"roulette"`
	Slots    T `json:"slots"`
}

func (p *PerGame[T]) Add(source GameSource, delta T) {
	switch source {
	case GameClick:
		p.Click += delta
	case GamePlinko:
		p.Plinko += delta
	case GameRoulette:
		p.Roulette += delta
	case GameSlots:
		p.Slots += delta
	}
}

func (p PerGame[T]) Get(source GameSource) T {
	switch source {
	case GameClick:
		return p.Click
	case GamePlinko:
		return p.Plinko
	case GameRoulette:
		return p.Roulette
	case GameSlots:
		return p.Slots
	}
	var zero T
	return zero
}

type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	case RiskExtreme:
		return RiskExtreme, true
	}
	return "", false
}

// Prerequisite is the tier that must already be unlocked before r can be bought.
func (r RiskLevel) Prerequisite() (RiskLevel, bool) {
	switch r {
	case RiskHigh:
		return RiskMedium, true
	case RiskExtreme:
		return RiskHigh, true
	}
	return "", false
}

type RiskUnlocks struct {
	Medium  bool `json:"medium"`
	High    bool `json:"high"`
	Extreme bool `json:"extreme"`
}

func (u RiskUnlocks) Has(level RiskLevel) bool {
	switch level {
	case RiskLow:
		return true
	case RiskMedium:
		return u.Medium
	case RiskHigh:
		return u.High
	case RiskExtreme:
		return u.Extreme
	}
	return false
}

func (u *RiskUnlocks) Unlock(level RiskLevel) {
	switch level {
	case RiskMedium:
		u.Medium = true
	case RiskHigh:
		u.High = true
	case RiskExtreme:
		u.Extreme = true
	}
}

// DefaultRiskUnlockCosts are the one-time prices of each paid plinko tier.
var DefaultRiskUnlockCosts = map[RiskLevel]float64{
	RiskMedium:  50000,
	RiskHigh:    500000,
	RiskExtreme: 5000000,
}
