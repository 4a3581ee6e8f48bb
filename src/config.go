package src

import (
	"errors"
	"fmt"
	"io/fs"

	"gentherapist/src/model"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig          model.LogConfig          `envconfig:""`
	ServerConfig       model.ServerConfig       `envconfig:""`
	ConversationConfig model.ConversationConfig `envconfig:""`
	KnowledgeConfig    model.KnowledgeConfig    `envconfig:""`
}

// LoadConfig reads .env files (when present) and then the process environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks combinations envconfig cannot express
func (c *Config) Validate() error {
	switch c.ConversationConfig.Backend {
	case "memory":
	case "redis":
		if c.ConversationConfig.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q (want memory or redis)", c.ConversationConfig.Backend)
	}

	if c.ConversationConfig.MaxTurns <= 0 {
		return fmt.Errorf("SESSION_MAX_TURNS must be positive, got %d", c.ConversationConfig.MaxTurns)
	}

	return nil
}
