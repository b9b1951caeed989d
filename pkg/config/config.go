package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject    string
	ServiceAccountJSON string
	ServiceAccountPath string
	StorageBucket      string
	StoreBackend       string
	AdminClaim         string

	CartDBPath        string
	CatalogPageSize   int
	ReadyTimeout      time.Duration
	ImageProbeTimeout time.Duration

	Locale         string
	CurrencySymbol string
	OrderPhone     string
	PostalCountry  string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		StoreBackend:       getEnv("STORE_BACKEND", BackendFirestore),
		AdminClaim:         getEnv("ADMIN_CLAIM", "admin"),
		CartDBPath:         getEnv("CART_DB_PATH", "storefront.db"),
		CatalogPageSize:    getEnvAsInt("CATALOG_PAGE_SIZE", 12),
		ReadyTimeout:       getEnvAsMillis("READY_TIMEOUT_MS", 5000),
		ImageProbeTimeout:  getEnvAsMillis("IMAGE_PROBE_TIMEOUT_MS", 8000),
		Locale:             getEnv("STORE_LOCALE", "pt-BR"),
		CurrencySymbol:     getEnv("CURRENCY_SYMBOL", "R$"),
		OrderPhone:         getEnv("ORDER_PHONE", ""),
		PostalCountry:      getEnv("POSTAL_COUNTRY", "BR"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %s backend", BackendFirestore)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.CatalogPageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.CatalogPageSize)
	}
	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("READY_TIMEOUT_MS must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int64) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return time.Duration(intValue) * time.Millisecond
		}
	}
	return time.Duration(defaultValue) * time.Millisecond
}
