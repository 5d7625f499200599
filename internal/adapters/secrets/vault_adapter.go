package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token auth
	Token string

	// AppRole auth
	RoleID   string
	SecretID string

	// KV mount path (default: "secret")
	MountPath string

	// KV version: 1 or 2 (default: 2)
	KVVersion int

	// Cache TTL for secrets (default: 5 minutes)
	CacheTTL time.Duration

	// Enable caching
	EnableCache bool
}

// DefaultVaultConfig returns default configuration
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		AuthMethod:  "token",
		MountPath:   "secret",
		KVVersion:   2,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// vaultAdapter implements the SecretManagerAdapter port for HashiCorp Vault
type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultAdapter creates a new Vault adapter
func NewVaultAdapter(cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("vault token is required for token auth")
		}
		client.SetToken(cfg.Token)
	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return nil, fmt.Errorf("role_id and secret_id are required for approle auth")
		}
		secret, err := client.Logical().Write("auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return nil, fmt.Errorf("approle login failed: %w", err)
		}
		if secret == nil || secret.Auth == nil {
			return nil, fmt.Errorf("approle login returned no auth info")
		}
		client.SetToken(secret.Auth.ClientToken)
	default:
		return nil, fmt.Errorf("unsupported vault auth method: %s", cfg.AuthMethod)
	}

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.Int("kv_version", cfg.KVVersion),
	)

	return &vaultAdapter{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// secretPath builds the full Vault path for a secret, inserting the
// "data" segment for KV v2 mounts.
func (a *vaultAdapter) secretPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if a.config.KVVersion == 2 {
		return fmt.Sprintf("%s/data/%s", a.config.MountPath, path)
	}
	return fmt.Sprintf("%s/%s", a.config.MountPath, path)
}

// GetSecret retrieves a secret by its path
// Path format: "paynow/merchants/{account}/service-key"
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	vaultSecret, err := a.client.Logical().ReadWithContext(ctx, a.secretPath(path))
	if err != nil {
		a.logger.Error("failed to read secret from vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret %s: %w", path, err)
	}
	if vaultSecret == nil || vaultSecret.Data == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	data := vaultSecret.Data
	version := ""
	if a.config.KVVersion == 2 {
		// KV v2 wraps the payload under "data" and carries version metadata
		inner, ok := vaultSecret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected kv v2 response for %s", path)
		}
		data = inner
		if meta, ok := vaultSecret.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := meta["version"]; ok {
				version = fmt.Sprintf("%v", v)
			}
		}
	}

	value, ok := data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no string \"value\" key", path)
	}

	secret := &ports.Secret{
		Value:    value,
		Version:  version,
		Metadata: make(map[string]string),
	}
	for key, val := range data {
		if key == "value" {
			continue
		}
		if s, ok := val.(string); ok {
			secret.Metadata[key] = s
		}
	}

	a.cache.set(path, secret)

	return secret, nil
}

// PutSecret creates or updates a secret
func (a *vaultAdapter) PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (string, error) {
	a.logger.Info("putting secret to vault", zap.String("path", path))

	payload := map[string]interface{}{"value": value}
	for key, val := range metadata {
		payload[key] = val
	}

	var body map[string]interface{}
	if a.config.KVVersion == 2 {
		body = map[string]interface{}{"data": payload}
	} else {
		body = payload
	}

	result, err := a.client.Logical().WriteWithContext(ctx, a.secretPath(path), body)
	if err != nil {
		a.logger.Error("failed to write secret to vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to write secret %s: %w", path, err)
	}

	a.cache.invalidate(path)

	version := ""
	if result != nil && result.Data != nil {
		if v, ok := result.Data["version"]; ok {
			version = fmt.Sprintf("%v", v)
		}
	}
	return version, nil
}
