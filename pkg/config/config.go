package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Store endpoints
	StoreBaseURL      string
	ListingPath       string // GET, offer listing page per item
	OfferJSONPath     string // GET, fast path when a listing id is already known
	ReservePath       string // POST, phase 1
	CommitPath        string // POST, phase 2
	SessionPath       string // GET, session token validation
	FirstPartySellers []string

	// Input files
	ItemsFile   string
	ProxiesFile string
	OfferIDFile string

	// Monitoring
	MonitorInterval     time.Duration
	RequestTimeout      time.Duration
	FailStatuses        []int
	FailThreshold       int
	SessionMaxAttempts  int
	ProxySwitchInterval time.Duration

	// CAPTCHA
	CaptchaSolverURL       string
	CaptchaSolveTimeout    time.Duration
	CheckoutCaptchaRetries int

	// Checkout
	StopAfterFirstPurchase bool

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Store endpoint defaults
		StoreBaseURL:      getEnvOrDefault("STORE_BASE_URL", "https://www.amazon.com"),
		ListingPath:       getEnvOrDefault("STORE_LISTING_PATH", "/gp/offer-listing/%s"),
		OfferJSONPath:     getEnvOrDefault("STORE_OFFER_JSON_PATH", "/gp/aws/cart/add-res.html"),
		ReservePath:       getEnvOrDefault("STORE_RESERVE_PATH", "/checkout/turbo/initiate"),
		CommitPath:        getEnvOrDefault("STORE_COMMIT_PATH", "/checkout/spc/place-order"),
		SessionPath:       getEnvOrDefault("STORE_SESSION_PATH", "/gp/cart/view.html"),
		FirstPartySellers: getListOrDefault("STORE_FIRST_PARTY_SELLERS", []string{"ATVPDKIKX0DER"}),

		// Input file defaults
		ItemsFile:   getEnvOrDefault("ITEMS_FILE", "items.yaml"),
		ProxiesFile: getEnvOrDefault("PROXIES_FILE", "proxies.json"),
		OfferIDFile: os.Getenv("OFFER_ID_FILE"),

		// Monitoring defaults
		MonitorInterval:     getDurationOrDefault("MONITOR_INTERVAL", 3*time.Second),
		RequestTimeout:      getDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		FailStatuses:        getIntListOrDefault("MONITOR_FAIL_STATUSES", []int{503}),
		FailThreshold:       getIntOrDefault("MONITOR_FAIL_THRESHOLD", 5),
		SessionMaxAttempts:  getIntOrDefault("SESSION_MAX_ATTEMPTS", 10),
		ProxySwitchInterval: getDurationOrDefault("PROXY_SWITCH_INTERVAL", 300*time.Second),

		// CAPTCHA defaults
		CaptchaSolverURL:       os.Getenv("CAPTCHA_SOLVER_URL"),
		CaptchaSolveTimeout:    getDurationOrDefault("CAPTCHA_SOLVE_TIMEOUT", 20*time.Second),
		CheckoutCaptchaRetries: getIntOrDefault("CHECKOUT_CAPTCHA_RETRIES", 50),

		// Checkout defaults
		StopAfterFirstPurchase: getBoolOrDefault("STOP_AFTER_FIRST_PURCHASE", true),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "sniper"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "sniper123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "restock_sniper"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.StoreBaseURL == "" {
		return fmt.Errorf("STORE_BASE_URL cannot be empty")
	}

	if !strings.Contains(c.ListingPath, "%s") {
		return fmt.Errorf("STORE_LISTING_PATH must contain a %%s item placeholder, got %q", c.ListingPath)
	}

	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive, got %v", c.MonitorInterval)
	}

	if c.FailThreshold <= 0 {
		return fmt.Errorf("MONITOR_FAIL_THRESHOLD must be positive, got %d", c.FailThreshold)
	}

	if c.CheckoutCaptchaRetries <= 0 {
		return fmt.Errorf("CHECKOUT_CAPTCHA_RETRIES must be positive, got %d", c.CheckoutCaptchaRetries)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}

	return out
}

func getIntListOrDefault(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		intVal, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		out = append(out, intVal)
	}

	return out
}
