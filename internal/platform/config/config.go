package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	FeedInProcess = "inprocess"
	FeedPostgres  = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" env-default:"practicedesk"`
	HTTPPort    string `yaml:"http_port" env:"HTTP_PORT" env-default:"8080"`
	StoreDriver string `yaml:"store_driver" env:"STORE_DRIVER" env-default:"memory"`
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	ChangeFeed  string `yaml:"change_feed" env:"CHANGE_FEED" env-default:"inprocess"`

	JWTSecret      string `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer      string `yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"practicedesk"`
	OfficeTimezone string `yaml:"office_timezone" env:"OFFICE_TIMEZONE" env-default:"UTC"`

	StorageRoot          string        `yaml:"storage_root" env:"STORAGE_ROOT" env-default:"./data/documents"`
	StorageSigningKey    string        `yaml:"storage_signing_key" env:"STORAGE_SIGNING_KEY"`
	StoragePublicBaseURL string        `yaml:"storage_public_base_url" env:"STORAGE_PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	SignedLinkTTL        time.Duration `yaml:"signed_link_ttl" env:"SIGNED_LINK_TTL" env-default:"60s"`

	RealtimeSessionBuffer int `yaml:"realtime_session_buffer" env:"REALTIME_SESSION_BUFFER" env-default:"64"`

	EnableInvoiceOverdueSweep bool          `yaml:"enable_invoice_overdue_sweep" env:"ENABLE_INVOICE_OVERDUE_SWEEP" env-default:"false"`
	WorkerPollInterval        time.Duration `yaml:"worker_poll_interval" env:"WORKER_POLL_INTERVAL" env-default:"1m"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads CONFIG_FILE when set, then the environment on top of it.
func Load() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.ChangeFeed {
	case FeedInProcess:
	case FeedPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required when CHANGE_FEED=%s", FeedPostgres)
		}
	default:
		return fmt.Errorf("unsupported CHANGE_FEED %q", c.ChangeFeed)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.SignedLinkTTL <= 0 {
		return fmt.Errorf("SIGNED_LINK_TTL must be positive")
	}
	return nil
}

// Location resolves the office timezone used for due-date boundaries.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.OfficeTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load OFFICE_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// Logger builds the process base logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger(process string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(c.LogFormat), "text") {
		handler = slog.NewTextHandler(os.Stdout, options)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, options)
	}
	return slog.New(handler).With("service", c.ServiceName, "process", process)
}
