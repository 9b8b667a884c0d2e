package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig is the service environment. Optional integrations (bridge,
// redis, postgres, engine) stay disabled when their variables are unset.
type AppConfig struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	BoardsFile   string `env:"BOARDS_FILE" envDefault:"boards.yml"`
	MessagesFile string `env:"MESSAGES_FILE"`

	BridgeURL    string `env:"BRIDGE_URL"`
	BridgeToken  string `env:"BRIDGE_TOKEN"`
	GatewayToken string `env:"GATEWAY_TOKEN"`

	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	StockfishPath    string        `env:"STOCKFISH_PATH"`
	EngineMoveTime   time.Duration `env:"ENGINE_MOVE_TIME" envDefault:"1500ms"`
	EngineSkillLevel int           `env:"ENGINE_SKILL_LEVEL" envDefault:"5"`
	EngineHashMB     int           `env:"ENGINE_HASH_MB" envDefault:"64"`
	EngineThreads    int           `env:"ENGINE_THREADS" envDefault:"1"`

	// CPUMoveDelay spaces the machine's reply out so it lands after the
	// human's own move on the client.
	CPUMoveDelay time.Duration `env:"CPU_MOVE_DELAY" envDefault:"500ms"`

	SweepInitialDelay time.Duration `env:"CHALLENGE_SWEEP_DELAY" envDefault:"1s"`
	SweepInterval     time.Duration `env:"CHALLENGE_SWEEP_INTERVAL" envDefault:"60s"`
}

// Load parses the environment and validates the result.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("CHALLENGE_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.SweepInitialDelay < 0 {
		return fmt.Errorf("CHALLENGE_SWEEP_DELAY must not be negative, got %s", c.SweepInitialDelay)
	}
	if c.EngineMoveTime <= 0 {
		return fmt.Errorf("ENGINE_MOVE_TIME must be positive, got %s", c.EngineMoveTime)
	}
	if c.EngineSkillLevel < 0 || c.EngineSkillLevel > 20 {
		return fmt.Errorf("ENGINE_SKILL_LEVEL %d out of range 0-20", c.EngineSkillLevel)
	}
	if c.EngineHashMB <= 0 {
		return fmt.Errorf("ENGINE_HASH_MB must be positive, got %d", c.EngineHashMB)
	}
	if c.EngineThreads <= 0 {
		return fmt.Errorf("ENGINE_THREADS must be positive, got %d", c.EngineThreads)
	}
	if c.CPUMoveDelay < 0 {
		return fmt.Errorf("CPU_MOVE_DELAY must not be negative, got %s", c.CPUMoveDelay)
	}
	if c.BoardsFile == "" {
		return fmt.Errorf("BOARDS_FILE must not be empty")
	}
	return nil
}
