package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "KeyVend"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultIntentTTL      = 15 * time.Minute
	defaultSweepSchedule  = "@every 10m"
	defaultSuccessStatus  = "success"
	defaultTierPrices     = "day=15000,week=80000,month=250000"
	defaultDepositsPerMin = 5

	intentTTLSecondsEnvVar = "INTENT_TTL_SECONDS"
	intentTTLDurEnvVar     = "INTENT_TTL"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// TierPrices maps each purchasable tier to its price in the smallest
	// currency unit. The key set doubles as the recognized tier set.
	TierPrices map[string]int64

	// IntentTTL is how long a pending deposit intent stays matchable before
	// the sweep removes it. SweepSchedule is the cron spec for the sweep job.
	IntentTTL     time.Duration
	SweepSchedule string

	// StrictAmount requires an incoming bank notification to carry exactly
	// the amount the intent was created for. When false any positive amount
	// tied to the code is credited.
	StrictAmount bool

	// SuccessStatus is the sentinel an optional webhook status field must
	// equal for the event to be processed.
	SuccessStatus string

	// AdminTokenHash is the bcrypt hash the admin bearer token is checked
	// against. Empty disables the admin routes.
	AdminTokenHash string

	// BankAccount is embedded in the deposit QR payload alongside the memo
	// code so the user's banking app can prefill the transfer.
	BankAccount string

	DepositsPerMinute int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		ShutdownPeriod:    defaultShutdownDelay,
		IdempotencyTTL:    defaultIdempotencyTTL,
		IntentTTL:         defaultIntentTTL,
		SweepSchedule:     getEnv("SWEEP_SCHEDULE", defaultSweepSchedule),
		SuccessStatus:     getEnv("WEBHOOK_SUCCESS_STATUS", defaultSuccessStatus),
		AdminTokenHash:    os.Getenv("ADMIN_TOKEN_HASH"),
		BankAccount:       os.Getenv("DEPOSIT_BANK_ACCOUNT"),
		DepositsPerMinute: defaultDepositsPerMin,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.IntentTTL, err = durationFromEnv(intentTTLSecondsEnvVar, intentTTLDurEnvVar, cfg.IntentTTL); err != nil {
		return Config{}, err
	}

	cfg.StrictAmount = true
	if v := os.Getenv("WEBHOOK_STRICT_AMOUNT"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WEBHOOK_STRICT_AMOUNT: %w", err)
		}
		cfg.StrictAmount = strict
	}

	if v := os.Getenv("DEPOSITS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid DEPOSITS_PER_MINUTE: %q", v)
		}
		cfg.DepositsPerMinute = n
	}

	prices, err := ParseTierPrices(getEnv("TIER_PRICES", defaultTierPrices))
	if err != nil {
		return Config{}, err
	}
	cfg.TierPrices = prices

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// ParseTierPrices parses a "tier=price,tier=price" list into a price table.
func ParseTierPrices(spec string) (map[string]int64, error) {
	prices := make(map[string]int64)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid TIER_PRICES entry %q", pair)
		}
		name = strings.TrimSpace(name)
		price, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("invalid price for tier %q: %q", name, value)
		}
		if _, exists := prices[name]; exists {
			return nil, fmt.Errorf("duplicate tier %q in TIER_PRICES", name)
		}
		prices[name] = price
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("TIER_PRICES must declare at least one tier")
	}
	return prices, nil
}

// Tiers returns the recognized tier names.
func (c Config) Tiers() []string {
	tiers := make([]string, 0, len(c.TierPrices))
	for tier := range c.TierPrices {
		tiers = append(tiers, tier)
	}
	return tiers
}

// IsDev reports whether the app runs in a development-style environment where
// external stores may be absent and in-memory fallbacks are acceptable.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationFromEnv(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
