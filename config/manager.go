package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"netbill.com/console/config/providers"
)

// ConfigManager manages configuration from different sources. The
// primary provider is selected with CONFIG_SOURCE; plain environment
// variables are always available as the fallback.
type ConfigManager struct {
	configSource     string
	provider         providers.ConfigProvider
	fallbackProvider providers.ConfigProvider
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	// CONFIG_SOURCE and CONFIG_SOURCE_CONFIG bootstrap the config
	// system, so they must come straight from the environment.
	configSource := os.Getenv("CONFIG_SOURCE")
	if configSource == "" {
		configSource = "env-file"
	}

	var sourceConfig map[string]interface{}
	if configSource != "env-file" {
		if raw := os.Getenv("CONFIG_SOURCE_CONFIG"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sourceConfig); err != nil {
				return nil, fmt.Errorf("failed to parse CONFIG_SOURCE_CONFIG: %w", err)
			}
		}
	}

	factory := &providers.ProviderFactory{}

	providerConfig := providers.ProviderConfig{
		ProviderType: providers.ProviderType(configSource),
		Config:       sourceConfig,
	}
	if err := factory.ValidateProviderConfig(providerConfig); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	provider, err := factory.NewProvider(providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	fallbackProvider, err := factory.NewProvider(providers.ProviderConfig{
		ProviderType: providers.ProviderTypeEnvFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback provider: %w", err)
	}

	return &ConfigManager{
		configSource:     configSource,
		provider:         provider,
		fallbackProvider: fallbackProvider,
	}, nil
}

// Get retrieves a configuration value, falling back to environment
// variables when the primary provider cannot serve the key.
func (cm *ConfigManager) Get(key string) string {
	ctx := context.Background()

	value, err := cm.provider.Get(ctx, key)
	if err != nil {
		if cm.configSource == "env-file" {
			// Fallback is also env-file and would fail the same way.
			return ""
		}
		value, err = cm.fallbackProvider.Get(ctx, key)
		if err != nil {
			return ""
		}
	}
	return value
}

// GetWithDefault retrieves a configuration value with fallback
func (cm *ConfigManager) GetWithDefault(key, defaultValue string) string {
	if value := cm.Get(key); value != "" {
		return value
	}
	return defaultValue
}
