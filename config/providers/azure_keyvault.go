package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// AzureKeyVaultProvider implements ConfigProvider for Azure Key Vault.
// Secrets are cached in memory; Key Vault round trips are slow and the
// console reads the same handful of keys repeatedly.
type AzureKeyVaultProvider struct {
	client        *azsecrets.Client
	vaultURL      string
	cache         map[string]string
	cacheMutex    sync.RWMutex
	cacheExpiry   time.Time
	cacheDuration time.Duration
}

// Key Vault secret names cannot contain underscores, so env-style keys
// are transformed on the way in: BILLING_API_URL -> BILLING-API-URL.
func transformKeyForAzureKeyVault(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// NewAzureKeyVaultProvider creates a new Azure Key Vault provider
func NewAzureKeyVaultProvider(config ProviderConfig) (ConfigProvider, error) {
	vaultURL, ok := config.Config["vault_url"].(string)
	if !ok || vaultURL == "" {
		return nil, fmt.Errorf("vault_url is required in config for Azure Key Vault provider")
	}

	// Managed Identity / developer credential chain
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	return &AzureKeyVaultProvider{
		client:        client,
		vaultURL:      vaultURL,
		cache:         make(map[string]string),
		cacheDuration: 5 * time.Minute,
	}, nil
}

// Get retrieves a secret from Azure Key Vault
func (ap *AzureKeyVaultProvider) Get(ctx context.Context, key string) (string, error) {
	secretName := transformKeyForAzureKeyVault(key)

	ap.cacheMutex.RLock()
	if time.Now().Before(ap.cacheExpiry) {
		if value, ok := ap.cache[secretName]; ok {
			ap.cacheMutex.RUnlock()
			return value, nil
		}
	}
	ap.cacheMutex.RUnlock()

	resp, err := ap.client.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret '%s' from key vault: %w", secretName, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", secretName)
	}

	ap.cacheMutex.Lock()
	if time.Now().After(ap.cacheExpiry) {
		ap.cache = make(map[string]string)
		ap.cacheExpiry = time.Now().Add(ap.cacheDuration)
	}
	ap.cache[secretName] = *resp.Value
	ap.cacheMutex.Unlock()

	return *resp.Value, nil
}

// GetWithDefault retrieves a secret with fallback
func (ap *AzureKeyVaultProvider) GetWithDefault(ctx context.Context, key, defaultValue string) (string, error) {
	value, err := ap.Get(ctx, key)
	if err != nil || value == "" {
		return defaultValue, nil
	}
	return value, nil
}
