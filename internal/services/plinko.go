package services

import (
	"context"

	"gambleio-server/internal/models"

	log "github.com/sirupsen/logrus"
)

// PlinkoService aggregates where balls land across all players.
type PlinkoService struct {
	store PlinkoStatsStore
}

func NewPlinkoService(store PlinkoStatsStore) *PlinkoService {
	return &PlinkoService{store: store}
}

// RecordLanding counts one ball in slot. bet and multiplier are only logged.
func (s *PlinkoService) RecordLanding(ctx context.Context, username string, slot int, bet, multiplier float64) error {
	if slot < 0 || slot >= models.PlinkoSlots {
		return ErrInvalidInput
	}
	if err := s.store.RecordPlinkoLanding(ctx, slot); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"username":   username,
		"slot":       slot,
		"bet":        bet,
		"multiplier": multiplier,
	}).Debug("Plinko landing recorded")
	return nil
}

func (s *PlinkoService) Stats(ctx context.Context) (models.PlinkoStats, error) {
	return s.store.PlinkoStats(ctx)
}
