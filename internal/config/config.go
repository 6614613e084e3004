package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port string
	Env  string

	JWTSecret string

	StoreBackend string
	RedisURL     string
	RedisPass    string
	RedisDB      int
	DatabaseURL  string

	AdminResetKey string
	OwnerUsername string

	LogLevel string

	Game GameConfig
}

// GameConfig holds the tunable economy and timing values. Every field has a
// default and may be overridden from the YAML file named by GAME_CONFIG.
type GameConfig struct {
	StartingBalance float64            `yaml:"starting_balance"`
	RiskUnlockCosts map[string]float64 `yaml:"risk_unlock_costs"`
	Roulette        RouletteConfig     `yaml:"roulette"`
	Chat            ChatConfig         `yaml:"chat"`
}

type RouletteConfig struct {
	BettingDuration  time.Duration `yaml:"betting_duration"`
	SpinningDuration time.Duration `yaml:"spinning_duration"`
	ResultDuration   time.Duration `yaml:"result_duration"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	MinBet           float64       `yaml:"min_bet"`
	RecentWinners    int           `yaml:"recent_winners"`
}

type ChatConfig struct {
	MinDelay         time.Duration `yaml:"min_delay"`
	BurstWindow      time.Duration `yaml:"burst_window"`
	BurstLimit       int           `yaml:"burst_limit"`
	RateMuteDuration time.Duration `yaml:"rate_mute_duration"`
	MaxLength        int           `yaml:"max_length"`
	HistorySize      int           `yaml:"history_size"`
	PublicLimit      int           `yaml:"public_limit"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		StartingBalance: 10000,
		RiskUnlockCosts: map[string]float64{
			"medium":  50000,
			"high":    500000,
			"extreme": 5000000,
		},
		Roulette: RouletteConfig{
			BettingDuration:  20 * time.Second,
			SpinningDuration: 5 * time.Second,
			ResultDuration:   3 * time.Second,
			TickInterval:     500 * time.Millisecond,
			MinBet:           1,
			RecentWinners:    20,
		},
		Chat: ChatConfig{
			MinDelay:         2 * time.Second,
			BurstWindow:      15 * time.Second,
			BurstLimit:       5,
			RateMuteDuration: 15 * time.Second,
			MaxLength:        500,
			HistorySize:      200,
			PublicLimit:      100,
		},
	}
}

// Load reads the process environment. Callers load .env beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminResetKey: os.Getenv("ADMIN_RESET_KEY"),
		OwnerUsername: strings.ToLower(strings.TrimSpace(os.Getenv("OWNER_USERNAME"))),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Game:          DefaultGameConfig(),
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	if path := os.Getenv("GAME_CONFIG"); path != "" {
		if err := cfg.Game.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.JWTSecret == "" {
		if c.Env != "development" && c.Env != "test" {
			return fmt.Errorf("JWT_SECRET is required")
		}
		c.JWTSecret = "dev-secret"
	}

	return c.Game.Validate()
}

// LoadFile overlays values from a YAML file onto g.
func (g *GameConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read game config: %w", err)
	}
	return g.Unmarshal(data)
}

func (g *GameConfig) Unmarshal(data []byte) error {
	if err := yaml.Unmarshal(data, g); err != nil {
		return fmt.Errorf("failed to parse game config: %w", err)
	}
	return nil
}

func (g GameConfig) Validate() error {
	if g.StartingBalance < 0 {
		return fmt.Errorf("starting_balance must not be negative")
	}
	r := g.Roulette
	if r.BettingDuration <= 0 || r.SpinningDuration <= 0 || r.ResultDuration <= 0 {
		return fmt.Errorf("roulette phase durations must be positive")
	}
	if r.TickInterval <= 0 {
		return fmt.Errorf("roulette tick_interval must be positive")
	}
	if r.RecentWinners <= 0 {
		return fmt.Errorf("roulette recent_winners must be positive")
	}
	c := g.Chat
	if c.BurstLimit <= 0 || c.MaxLength <= 0 || c.HistorySize <= 0 {
		return fmt.Errorf("chat limits must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
