package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by MAPS_PROVIDER.
const (
	ProviderGoogle  = "google"
	ProviderOffline = "offline"
)

type Config struct {
	Port        string
	AppEnv      string
	DatabaseURL string
	SeedPath    string

	Maps  MapsConfig
	Redis RedisConfig
	Kafka KafkaConfig
}

type MapsConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	MaxAttempts     int
	TravelMode      string
	OfflineSpeedKmh float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (when present) and the process environment.
// Missing mandatory settings are reported as errors so startup fails fast.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		Port:        Get("PORT", "8080"),
		AppEnv:      Get("APP_ENV", "development"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SeedPath:    Get("SEED_PATH", "data/seeds/trips.json"),
		Maps: MapsConfig{
			Provider:   strings.ToLower(Get("MAPS_PROVIDER", ProviderGoogle)),
			APIKey:     strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")),
			BaseURL:    Get("MAPS_BASE_URL", "https://maps.googleapis.com/maps/api"),
			TravelMode: Get("MAPS_TRAVEL_MODE", "driving"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   Get("KAFKA_TOPIC", "trip.events"),
		},
	}

	var err error
	if cfg.Maps.Timeout, err = getDuration("MAPS_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.Maps.MaxAttempts, err = getInt("MAPS_MAX_ATTEMPTS", 1); err != nil {
		errs = append(errs, err)
	}
	if cfg.Maps.OfflineSpeedKmh, err = getFloat("OFFLINE_SPEED_KMH", 40); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.TTL, err = getDuration("PLACE_CACHE_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(errs...))
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	switch c.Maps.Provider {
	case ProviderGoogle:
		if c.Maps.APIKey == "" {
			errs = append(errs, errors.New("GOOGLE_MAPS_API_KEY is required when MAPS_PROVIDER=google"))
		}
	case ProviderOffline:
	default:
		errs = append(errs, fmt.Errorf("MAPS_PROVIDER must be %q or %q, got %q", ProviderGoogle, ProviderOffline, c.Maps.Provider))
	}

	if c.Maps.Timeout <= 0 {
		errs = append(errs, errors.New("MAPS_TIMEOUT must be positive"))
	}
	if c.Maps.MaxAttempts < 1 {
		errs = append(errs, errors.New("MAPS_MAX_ATTEMPTS must be at least 1"))
	}
	if c.Maps.OfflineSpeedKmh <= 0 {
		errs = append(errs, errors.New("OFFLINE_SPEED_KMH must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
