package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// GatewayConfig holds Netcash Pay Now gateway configuration
type GatewayConfig struct {
	ServiceKey string // Pay Now service key issued per merchant account
	VendorKey  string // Software vendor key
	Account    string // Netcash merchant account number
	PartnerURL string // NIWS partner web service endpoint
	PayNowURL  string // Pay Now web service endpoint
	TestMode   bool   // Flag outgoing payments as test transactions
	Timeout    int    // Request timeout in seconds (default: 30)
}

// SecretsConfig selects the secret storage backend
type SecretsConfig struct {
	Backend string // local, aws, vault
	// AWS
	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string
	// Vault
	VaultAddress    string
	VaultToken      string
	VaultAuthMethod string
	VaultRoleID     string
	VaultSecretID   string
	// Local
	LocalPrefix string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "paynow"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Gateway: GatewayConfig{
			ServiceKey: getEnv("NETCASH_SERVICE_KEY", ""),
			VendorKey:  getEnv("NETCASH_VENDOR_KEY", ""),
			Account:    getEnv("NETCASH_ACCOUNT", ""),
			PartnerURL: getEnv("NETCASH_PARTNER_URL", "https://ws.netcash.co.za/NIWS/NIWS_Partner.svc"),
			PayNowURL:  getEnv("NETCASH_PAYNOW_URL", "https://ws.netcash.co.za/PayNow/PayNow.svc"),
			TestMode:   getEnvAsBool("NETCASH_TEST_MODE", false),
			Timeout:    getEnvAsInt("NETCASH_TIMEOUT", 30),
		},
		Secrets: SecretsConfig{
			Backend:         getEnv("SECRETS_BACKEND", "local"),
			AWSRegion:       getEnv("AWS_REGION", "af-south-1"),
			AWSProfile:      getEnv("AWS_PROFILE", ""),
			AWSEndpoint:     getEnv("AWS_SECRETS_ENDPOINT", ""),
			VaultAddress:    getEnv("VAULT_ADDR", ""),
			VaultToken:      getEnv("VAULT_TOKEN", ""),
			VaultAuthMethod: getEnv("VAULT_AUTH_METHOD", "token"),
			VaultRoleID:     getEnv("VAULT_ROLE_ID", ""),
			VaultSecretID:   getEnv("VAULT_SECRET_ID", ""),
			LocalPrefix:     getEnv("SECRETS_LOCAL_PREFIX", "PAYNOW"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Gateway.ServiceKey == "" {
		return nil, fmt.Errorf("NETCASH_SERVICE_KEY is required")
	}
	if cfg.Gateway.Account == "" {
		return nil, fmt.Errorf("NETCASH_ACCOUNT is required")
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
