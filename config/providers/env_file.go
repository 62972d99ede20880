package providers

import (
	"context"
	"fmt"
	"os"
)

// EnvFileProvider reads configuration from the process environment. It
// is the default source for local development and the fallback when a
// remote provider cannot serve a key.
type EnvFileProvider struct{}

// NewEnvFileProvider creates an environment provider. It needs nothing
// from the provider configuration.
func NewEnvFileProvider(_ ProviderConfig) (ConfigProvider, error) {
	return &EnvFileProvider{}, nil
}

// Get retrieves a configuration value from the environment
func (ep *EnvFileProvider) Get(ctx context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("environment variable '%s' not set", key)
	}
	return value, nil
}

// GetWithDefault retrieves a configuration value with fallback
func (ep *EnvFileProvider) GetWithDefault(ctx context.Context, key, defaultValue string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return value, nil
}
