package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// ConsoleConfig is the typed configuration for the console binary.
type ConsoleConfig struct {
	Environment   string        `validate:"required,oneof=development staging production"`
	ListenAddr    string        `validate:"required"`
	APIBaseURL    string        `validate:"required,url"`
	SessionFile   string        `validate:"required"`
	CheckInterval time.Duration `validate:"required"`
}

// LoadConsoleConfig assembles and validates the console configuration
// from the global config manager.
func LoadConsoleConfig() (*ConsoleConfig, error) {
	if err := InitGlobalConfig(); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	interval, err := time.ParseDuration(GetConfigWithDefault("SESSION_CHECK_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_CHECK_INTERVAL: %w", err)
	}
	if interval < time.Second {
		return nil, fmt.Errorf("SESSION_CHECK_INTERVAL must be at least 1s, got %s", interval)
	}

	cfg := &ConsoleConfig{
		Environment:   GetConfigWithDefault("CONSOLE_ENV", "development"),
		ListenAddr:    GetConfigWithDefault("CONSOLE_LISTEN_ADDR", ":3000"),
		APIBaseURL:    GetConfigWithDefault("BILLING_API_URL", "http://localhost:8080/api/v1"),
		SessionFile:   GetConfigWithDefault("SESSION_FILE", defaultSessionFile()),
		CheckInterval: interval,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid console config: %w", err)
	}
	return cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "netbill-session.json"
	}
	return filepath.Join(dir, "netbill", "session.json")
}
