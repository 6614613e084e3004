package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GAME_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 20*time.Second, cfg.Game.Roulette.BettingDuration)
	assert.Equal(t, 5*time.Second, cfg.Game.Roulette.SpinningDuration)
	assert.Equal(t, 3*time.Second, cfg.Game.Roulette.ResultDuration)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.Roulette.TickInterval)
	assert.Equal(t, 5, cfg.Game.Chat.BurstLimit)
	assert.Equal(t, float64(10000), cfg.Game.StartingBalance)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("GAME_CONFIG", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GAME_CONFIG", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestGameConfig_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	data := []byte(`
starting_balance: 500
roulette:
  betting_duration: 10s
chat:
  burst_limit: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	g := DefaultGameConfig()
	require.NoError(t, g.LoadFile(path))

	assert.Equal(t, float64(500), g.StartingBalance)
	assert.Equal(t, 10*time.Second, g.Roulette.BettingDuration)
	assert.Equal(t, 5*time.Second, g.Roulette.SpinningDuration, "unset fields keep defaults")
	assert.Equal(t, 3, g.Chat.BurstLimit)
	assert.Equal(t, 2*time.Second, g.Chat.MinDelay)
	assert.NoError(t, g.Validate())
}
