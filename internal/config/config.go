package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store backends
const (
	StoreTypeDynamoDB = "dynamodb"
	StoreTypeMemory   = "memory"
	StoreTypeSQLite   = "sqlite"
)

// DefaultTableName is the table the inventory lives in unless TABLE_NAME says otherwise
const DefaultTableName = "product-inventory"

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Log         LogConfig
	Store       StoreConfig
	Products    ProductsConfig
	RateLimit   RateLimitConfig
	Swagger     bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// StoreConfig holds item store configuration
type StoreConfig struct {
	Type           string // "dynamodb", "memory" or "sqlite"
	TableName      string
	Region         string
	Endpoint       string
	ConsistentRead bool
	ScanPageSize   int
	SQLitePath     string
}

// ProductsConfig holds product operation settings
type ProductsConfig struct {
	// UpdatableAttributes restricts the attribute names EditProduct accepts.
	// Empty means any syntactically valid name except the key.
	UpdatableAttributes []string
}

// RateLimitConfig holds the dev server rate limiter settings
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORE_TYPE", StoreTypeDynamoDB)
	v.SetDefault("TABLE_NAME", DefaultTableName)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DYNAMODB_CONSISTENT_READ", false)
	v.SetDefault("STORE_SCAN_PAGE_SIZE", 0)
	v.SetDefault("SQLITE_PATH", "./data/products.db")
	v.SetDefault("RATE_LIMIT_RPS", 50.0)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("SWAGGER_ENABLED", true)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Store: StoreConfig{
			Type:           strings.ToLower(v.GetString("STORE_TYPE")),
			TableName:      v.GetString("TABLE_NAME"),
			Region:         v.GetString("AWS_REGION"),
			Endpoint:       v.GetString("DYNAMODB_ENDPOINT"),
			ConsistentRead: v.GetBool("DYNAMODB_CONSISTENT_READ"),
			ScanPageSize:   v.GetInt("STORE_SCAN_PAGE_SIZE"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
		},
		Products: ProductsConfig{
			UpdatableAttributes: splitList(v.GetString("PRODUCT_UPDATABLE_ATTRIBUTES")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Swagger: v.GetBool("SWAGGER_ENABLED"),
	}

	if config.IsProduction() {
		config.Swagger = false
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreTypeDynamoDB:
		if strings.TrimSpace(c.Store.TableName) == "" {
			return fmt.Errorf("invalid configuration: TABLE_NAME is required for the dynamodb store")
		}
	case StoreTypeSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return fmt.Errorf("invalid configuration: SQLITE_PATH is required for the sqlite store")
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("invalid configuration: unsupported STORE_TYPE %q", c.Store.Type)
	}

	if c.Store.ScanPageSize < 0 {
		return fmt.Errorf("invalid configuration: STORE_SCAN_PAGE_SIZE cannot be negative")
	}

	return nil
}

// IsProduction reports whether the application runs in the production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
