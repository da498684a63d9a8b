package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration loaded from environment
// variables. Tax, fee and discount rules live here rather than in code so
// product changes do not require a redeploy of constants.
type Config struct {
	Env      string
	HTTPAddr string

	ProviderBaseURL      string
	ProviderTokenURL     string
	ProviderClientID     string
	ProviderClientSecret string
	ProviderScope        string
	TokenSafetyMargin    time.Duration

	QueueSpacing     time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	ListingsTTL   time.Duration
	ListingTTL    time.Duration
	CalendarTTL   time.Duration
	SweepInterval time.Duration

	Currency         string
	TaxRate          float64
	CleaningFee      int64
	ServiceFee       int64
	RoomDiscountMin  int
	RoomDiscountRate float64

	QuoteDebounce    time.Duration
	MaxRooms         int
	MaxGuestsPerRoom int

	KafkaBrokers []string
	KafkaTopic   string
}

// Load parses configuration from the current environment. Provider
// credentials are the only hard requirement: without them every upstream
// call is doomed, so missing credentials fail fast.
func Load() (Config, error) {
	cfg := Config{
		Env:                  getEnv("APP_ENV", "dev"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		ProviderBaseURL:      getEnv("PROVIDER_BASE_URL", "https://api.inventory.example.com/v1"),
		ProviderTokenURL:     getEnv("PROVIDER_TOKEN_URL", "https://auth.inventory.example.com/oauth2/token"),
		ProviderClientID:     os.Getenv("PROVIDER_CLIENT_ID"),
		ProviderClientSecret: os.Getenv("PROVIDER_CLIENT_SECRET"),
		ProviderScope:        getEnv("PROVIDER_SCOPE", "open-api"),
		Currency:             getEnv("CURRENCY", "USD"),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "reservation.events.v1"),
	}

	if cfg.ProviderClientID == "" || cfg.ProviderClientSecret == "" {
		return Config{}, fmt.Errorf("PROVIDER_CLIENT_ID and PROVIDER_CLIENT_SECRET are required")
	}

	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if cfg.TokenSafetyMargin, err = parseDurationEnv("PROVIDER_TOKEN_MARGIN", 300*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.QueueSpacing, err = parseDurationEnv("PROVIDER_QUEUE_SPACING", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RetryBaseDelay, err = parseDurationEnv("PROVIDER_RETRY_BASE_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RetryMaxAttempts, err = parseIntEnv("PROVIDER_RETRY_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.ListingsTTL, err = parseDurationEnv("LISTINGS_CACHE_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ListingTTL, err = parseDurationEnv("LISTING_CACHE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CalendarTTL, err = parseDurationEnv("CALENDAR_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = parseDurationEnv("CACHE_SWEEP_INTERVAL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.QuoteDebounce, err = parseDurationEnv("QUOTE_DEBOUNCE", 300*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.TaxRate, err = parseFloatEnv("TAX_RATE", 0.13); err != nil {
		return Config{}, err
	}
	if cfg.CleaningFee, err = parseInt64Env("CLEANING_FEE", 0); err != nil {
		return Config{}, err
	}
	if cfg.ServiceFee, err = parseInt64Env("SERVICE_FEE", 0); err != nil {
		return Config{}, err
	}
	if cfg.RoomDiscountMin, err = parseIntEnv("ROOM_DISCOUNT_MIN_ROOMS", 3); err != nil {
		return Config{}, err
	}
	if cfg.RoomDiscountRate, err = parseFloatEnv("ROOM_DISCOUNT_RATE", 0.05); err != nil {
		return Config{}, err
	}
	if cfg.MaxRooms, err = parseIntEnv("MAX_ROOMS", 5); err != nil {
		return Config{}, err
	}
	if cfg.MaxGuestsPerRoom, err = parseIntEnv("MAX_GUESTS_PER_ROOM", 4); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %w", key, err)
	}
	return v, nil
}
