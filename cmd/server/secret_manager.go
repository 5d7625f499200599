package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/ports"
	"github.com/netcash/paynow-go/internal/adapters/secrets"
	"github.com/netcash/paynow-go/internal/config"
)

// merchantCredentials are the gateway keys the service signs forms with
type merchantCredentials struct {
	ServiceKey string
	VendorKey  string
}

// initSecretManager initializes the appropriate secret manager based on configuration
// Supports:
//   - AWS Secrets Manager (production): SECRETS_BACKEND=aws
//   - HashiCorp Vault: SECRETS_BACKEND=vault
//   - Local env-backed store (development/testing): default
func initSecretManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) ports.SecretManagerAdapter {
	switch cfg.Secrets.Backend {
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion)
		awsCfg.Profile = cfg.Secrets.AWSProfile
		awsCfg.Endpoint = cfg.Secrets.AWSEndpoint
		sm, err := secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize AWS Secrets Manager", zap.Error(err))
		}
		return sm
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultCfg.AuthMethod = cfg.Secrets.VaultAuthMethod
		vaultCfg.Token = cfg.Secrets.VaultToken
		vaultCfg.RoleID = cfg.Secrets.VaultRoleID
		vaultCfg.SecretID = cfg.Secrets.VaultSecretID
		sm, err := secrets.NewVaultAdapter(vaultCfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Vault adapter", zap.Error(err))
		}
		return sm
	case "local":
		return secrets.NewLocalSecretManager(cfg.Secrets.LocalPrefix, logger)
	default:
		logger.Warn("Unknown SECRETS_BACKEND, falling back to local",
			zap.String("backend", cfg.Secrets.Backend),
		)
		return secrets.NewLocalSecretManager(cfg.Secrets.LocalPrefix, logger)
	}
}

// resolveCredentials looks up the merchant's service and vendor keys in the
// secret backend, falling back to the environment-supplied values.
func resolveCredentials(ctx context.Context, cfg *config.Config, logger *zap.Logger) merchantCredentials {
	creds := merchantCredentials{
		ServiceKey: cfg.Gateway.ServiceKey,
		VendorKey:  cfg.Gateway.VendorKey,
	}

	sm := initSecretManager(ctx, cfg, logger)

	serviceKeyPath := fmt.Sprintf("paynow/merchants/%s/service-key", cfg.Gateway.Account)
	if secret, err := sm.GetSecret(ctx, serviceKeyPath); err == nil && secret.Value != "" {
		creds.ServiceKey = secret.Value
	} else if err != nil {
		logger.Debug("service key not found in secret backend, using env value",
			zap.String("path", serviceKeyPath),
		)
	}

	vendorKeyPath := fmt.Sprintf("paynow/merchants/%s/vendor-key", cfg.Gateway.Account)
	if secret, err := sm.GetSecret(ctx, vendorKeyPath); err == nil && secret.Value != "" {
		creds.VendorKey = secret.Value
	} else if err != nil {
		logger.Debug("vendor key not found in secret backend, using env value",
			zap.String("path", vendorKeyPath),
		)
	}

	return creds
}
