// Package config handles loading and validation of service configuration.
// Supports both development (env vars, .env) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"

	"storefront-tracker/internal/model"
)

// Defaults applied when a setting is absent.
const (
	DefaultPort            = "8080"
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 5.0
	DefaultRateLimitBurst  = 20
	DefaultAPIVersion      = "v3"
)

// Config holds all service configuration.
// Environment determines whether secrets load from env vars (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	MerchantID string

	// Upstream and traffic limits
	UpstreamTimeout time.Duration // Per WordPress call
	RateLimitRPS    float64       // Per client IP; 0 disables
	RateLimitBurst  int

	// Merchant-specific configuration (loaded from secrets)
	Merchant MerchantConfig
}

// MerchantConfig contains merchant-specific settings.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type MerchantConfig struct {
	StoreURL    string `json:"store_url"`
	StoreDomain string `json:"store_domain"` // Derived from StoreURL if not set
	APIKey      string `json:"api_key"`
	APISecret   string `json:"api_secret"`
	APIVersion  string `json:"api_version,omitempty"` // WooCommerce REST version, e.g. "v3"
	Currency    string `json:"currency,omitempty"`    // Display fallback, e.g. "AED"
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Outside production a .env file (ENV_FILE, default ".env") is read first;
// variables already set in the process environment win.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	if os.Getenv("ENVIRONMENT") != "production" {
		if err := loadDotEnv(envOrDefault("ENV_FILE", ".env")); err != nil {
			return nil, err
		}
	}

	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	// Otherwise, use ENV vars / Secret Manager approach
	cfg := &Config{
		Port:        envOrDefault("PORT", DefaultPort),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		MerchantID:  os.Getenv("MERCHANT_ID"),
	}

	var err error
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", DefaultUpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", DefaultRateLimitRPS); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", DefaultRateLimitBurst); err != nil {
		return nil, err
	}

	// MerchantID required in all environments
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("MERCHANT_ID environment variable required")
	}

	// Load merchant config based on environment
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading merchant config: %w", err)
	}

	cfg.applyDefaults()

	// Validate required merchant fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv reads path into the process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Use a struct that matches the JSON structure
	var fileConfig struct {
		Port            string         `json:"port"`
		Environment     string         `json:"environment"`
		LogLevel        string         `json:"log_level"`
		MerchantID      string         `json:"merchant_id"`
		UpstreamTimeout string         `json:"upstream_timeout"`
		RateLimitRPS    *float64       `json:"rate_limit_rps"`
		RateLimitBurst  int            `json:"rate_limit_burst"`
		Merchant        MerchantConfig `json:"merchant"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:            withDefault(fileConfig.Port, DefaultPort),
		Environment:     withDefault(fileConfig.Environment, "development"),
		LogLevel:        withDefault(fileConfig.LogLevel, "info"),
		MerchantID:      fileConfig.MerchantID,
		UpstreamTimeout: DefaultUpstreamTimeout,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  fileConfig.RateLimitBurst,
		Merchant:        fileConfig.Merchant,
	}

	if fileConfig.UpstreamTimeout != "" {
		d, err := time.ParseDuration(fileConfig.UpstreamTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream_timeout: %w", err)
		}
		cfg.UpstreamTimeout = d
	}
	if fileConfig.RateLimitRPS != nil {
		cfg.RateLimitRPS = *fileConfig.RateLimitRPS
	}

	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("merchant_id is required")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// loadFromSecretManager fetches merchant config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{merchant_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.MerchantID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Merchant); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads merchant config from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() {
	c.Merchant = MerchantConfig{
		StoreURL:    os.Getenv("MERCHANT_STORE_URL"),
		StoreDomain: os.Getenv("MERCHANT_STORE_DOMAIN"),
		APIKey:      os.Getenv("MERCHANT_API_KEY"),
		APISecret:   os.Getenv("MERCHANT_API_SECRET"),
		APIVersion:  os.Getenv("WC_API_VERSION"),
		Currency:    os.Getenv("CURRENCY"),
	}
}

// applyDefaults fills derived and optional merchant settings.
func (c *Config) applyDefaults() {
	c.Merchant.StoreURL = strings.TrimSuffix(strings.TrimSpace(c.Merchant.StoreURL), "/")

	// Derive store domain from URL if not explicitly set
	if c.Merchant.StoreDomain == "" && c.Merchant.StoreURL != "" {
		c.Merchant.StoreDomain = extractDomain(c.Merchant.StoreURL)
	}
	if c.Merchant.APIVersion == "" {
		c.Merchant.APIVersion = DefaultAPIVersion
	}
	if c.Merchant.Currency == "" {
		c.Merchant.Currency = model.DefaultCurrency
	}
	c.Merchant.Currency = strings.ToUpper(c.Merchant.Currency)
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = DefaultRateLimitBurst
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Merchant.StoreURL == "" {
		return fmt.Errorf("store_url is required")
	}
	if c.Merchant.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Merchant.APISecret == "" {
		return fmt.Errorf("api_secret is required")
	}

	// Validate store URL is well-formed
	u, err := url.Parse(c.Merchant.StoreURL)
	if err != nil {
		return fmt.Errorf("invalid store_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid store_url: scheme must be http or https")
	}

	// The REST namespace is wc/{major}: "v3", not "v3.1" or "3"
	if !semver.IsValid(c.Merchant.APIVersion) || semver.Major(c.Merchant.APIVersion) != c.Merchant.APIVersion {
		return fmt.Errorf("invalid api_version %q: want a major version such as %s", c.Merchant.APIVersion, DefaultAPIVersion)
	}

	if len(c.Merchant.Currency) != 3 {
		return fmt.Errorf("invalid currency %q: want an ISO 4217 code", c.Merchant.Currency)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must not be negative")
	}

	return nil
}

// extractDomain parses the domain from a URL string.
func extractDomain(storeURL string) string {
	u, err := url.Parse(storeURL)
	if err != nil {
		// Fallback: strip protocol prefix manually
		domain := strings.TrimPrefix(storeURL, "https://")
		domain = strings.TrimPrefix(domain, "http://")
		return strings.Split(domain, "/")[0]
	}
	return u.Host
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
