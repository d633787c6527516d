package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	// NextRoundDelay is the countdown between the host advancing and the
	// next round starting.
	NextRoundDelay time.Duration `env:"NEXT_ROUND_DELAY" envDefault:"3s"`

	// RoomTTL evicts rooms idle past this age. Zero disables the sweep.
	RoomTTL time.Duration `env:"ROOM_TTL" envDefault:"2h"`

	// CreateRoomRate limits room creations per second per client IP.
	CreateRoomRate float64 `env:"CREATE_ROOM_RATE" envDefault:"1"`
}

// Load reads configuration from the environment, with a .env file applied
// first when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
