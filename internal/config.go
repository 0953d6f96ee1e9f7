package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the environment configuration shared by both consoles.
type Config struct {
	ServerURL      string `env:"DESK_SERVER_URL,default=http://localhost:8080" validate:"required,url"`
	SocketURL      string `env:"DESK_SOCKET_URL,default=ws://localhost:8080/ws" validate:"required"`
	BadgerFilepath string `env:"DESK_BADGER_FILEPATH,default=.support-desk" validate:"required"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	RoomsPollInterval  time.Duration `env:"DESK_ROOMS_POLL_INTERVAL,default=30s"`
	AgentsPollInterval time.Duration `env:"DESK_AGENTS_POLL_INTERVAL,default=20s"`
	ActiveThreshold    time.Duration `env:"DESK_ACTIVE_THRESHOLD,default=5m"`

	AgentTypingWindow  time.Duration `env:"DESK_AGENT_TYPING_WINDOW,default=1500ms"`
	PlayerTypingWindow time.Duration `env:"DESK_PLAYER_TYPING_WINDOW,default=1200ms"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return config, nil
}
