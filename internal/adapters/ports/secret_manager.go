package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., the Pay Now service key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving merchant credentials
// (service key, vendor key, merchant account) from a secret management
// service. Supports multiple backends: AWS Secrets Manager, HashiCorp
// Vault, or local environment variables for development.
//
// Implementations are responsible for authentication with the backend and
// for caching secrets appropriately (with TTL).
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - AWS: "paynow/merchants/{account}/service-key"
	//   - Vault: "secret/data/paynow/merchants/{account}"
	//   - Local: the environment variable name
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret (admin/rotation operations)
	// Returns the new version identifier
	PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (version string, err error)
}
