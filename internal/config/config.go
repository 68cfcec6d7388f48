package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultBackendURL      = "http://localhost:8000/api"
	defaultDatabaseURL     = "file:astrobooking.db?_pragma=busy_timeout(5000)"
	defaultBookingTimezone = "Asia/Kolkata"
	defaultBrandName       = "AstroTech Wealth"
)

type Config struct {
	AppEnv            string        `mapstructure:"APP_ENV"`
	AppPort           string        `mapstructure:"APP_PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string        `mapstructure:"CORS_ORIGINS"`
	BackendURL        string        `mapstructure:"BACKEND_URL"`
	BackendTimeout    time.Duration `mapstructure:"BACKEND_TIMEOUT"`
	StatusTTL         time.Duration `mapstructure:"STATUS_TTL"`
	SessionIdleTTL    time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	BookingTimezone   string        `mapstructure:"BOOKING_TIMEZONE"`
	CheckoutKeyID     string        `mapstructure:"CHECKOUT_KEY_ID"`
	Currency          string        `mapstructure:"CURRENCY"`
	BrandName         string        `mapstructure:"BRAND_NAME"`
	ServiceEmail      string        `mapstructure:"SERVICE_EMAIL"`
	MeetingLocation   string        `mapstructure:"MEETING_LOCATION"`

	// Location is BookingTimezone resolved by Load.
	Location *time.Location `mapstructure:"-"`
}

// Load reads configuration from defaults, an optional config.yaml (in . or
// ./config) and the environment, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DATABASE_URL", defaultDatabaseURL)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("BACKEND_URL", defaultBackendURL)
	v.SetDefault("BACKEND_TIMEOUT", "10s")
	v.SetDefault("STATUS_TTL", "5s")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("BOOKING_TIMEZONE", defaultBookingTimezone)
	v.SetDefault("CHECKOUT_KEY_ID", "")
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("BRAND_NAME", defaultBrandName)
	v.SetDefault("SERVICE_EMAIL", "")
	v.SetDefault("MEETING_LOCATION", "Online (Google Meet)")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.BackendURL = strings.TrimSpace(cfg.BackendURL)
	cfg.CheckoutKeyID = strings.TrimSpace(cfg.CheckoutKeyID)
	cfg.ServiceEmail = strings.TrimSpace(cfg.ServiceEmail)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE value %q: %w", cfg.BookingTimezone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL must not be empty")
	}
	if cfg.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be > 0")
	}
	if cfg.StatusTTL <= 0 {
		return fmt.Errorf("STATUS_TTL must be > 0")
	}
	if cfg.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}
	if cfg.MaxRequestsPerMin <= 0 {
		return fmt.Errorf("MAX_REQUESTS_PER_MIN must be > 0")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return fmt.Errorf("CURRENCY must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.CheckoutKeyID == "" {
			return fmt.Errorf("in prod/release CHECKOUT_KEY_ID must be set")
		}
		if cfg.ServiceEmail == "" {
			return fmt.Errorf("in prod/release SERVICE_EMAIL must be set")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production-like environment.
func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}
