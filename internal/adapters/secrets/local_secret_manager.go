package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/ports"
)

// localSecretManager implements SecretManagerAdapter from environment
// variables. Development only; production uses AWS Secrets Manager or Vault.
type localSecretManager struct {
	prefix string
	logger *zap.Logger
}

// NewLocalSecretManager creates an env-backed secret manager. A path like
// "paynow/merchants/1234/service-key" is looked up as
// {prefix}_PAYNOW_MERCHANTS_1234_SERVICE_KEY.
func NewLocalSecretManager(prefix string, logger *zap.Logger) ports.SecretManagerAdapter {
	return &localSecretManager{
		prefix: prefix,
		logger: logger,
	}
}

func (m *localSecretManager) envName(path string) string {
	name := strings.NewReplacer("/", "_", "-", "_").Replace(path)
	name = strings.ToUpper(name)
	if m.prefix != "" {
		return m.prefix + "_" + name
	}
	return name
}

// GetSecret retrieves a secret from the environment
func (m *localSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	name := m.envName(path)

	m.logger.Debug("reading secret from environment",
		zap.String("path", path),
		zap.String("env", name),
	)

	value := os.Getenv(name)
	if value == "" {
		return nil, fmt.Errorf("secret not found: %s (env %s)", path, name)
	}

	return &ports.Secret{
		Value:   value,
		Version: "v1",
	}, nil
}

// PutSecret sets a secret in the process environment
func (m *localSecretManager) PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (string, error) {
	name := m.envName(path)

	m.logger.Info("storing secret in environment",
		zap.String("path", path),
	)

	if err := os.Setenv(name, value); err != nil {
		return "", fmt.Errorf("failed to set secret: %w", err)
	}
	return "v1", nil
}
