package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	LogLevel     string   `yaml:"log_level"`

	// Redis carries ledger events from the worker to API processes when
	// the ledger lives in postgres.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	StorageDriver      string        `yaml:"storage_driver"`
	MarketplaceAddress string        `yaml:"marketplace_address"`
	EventsTopic        string        `yaml:"events_topic"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
	WorkerPollInterval time.Duration `yaml:"worker_poll_interval"`

	RunMigrations     bool `yaml:"run_migrations"`
	EnableEventStream bool `yaml:"enable_event_stream"`

	// RateLimitRPS throttles write routes per caller; 0 disables it.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables. Later sources win.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.overlayEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		ServiceName:        "nft-marketplace",
		HTTPPort:           "8080",
		KafkaBrokers:       []string{"localhost:9092"},
		LogLevel:           "info",
		RedisAddr:          "localhost:6379",
		StorageDriver:      StorageMemory,
		MarketplaceAddress: "nft-marketplace",
		EventsTopic:        "marketplace.ledger_events",
		OutboxBatchSize:    100,
		WorkerPollInterval: 2 * time.Second,
		RunMigrations:      true,
		EnableEventStream:  true,
		RateLimitRPS:       20,
		RateLimitBurst:     40,
	}
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.ServiceName = envString("SERVICE_NAME", c.ServiceName)
	c.HTTPPort = envString("HTTP_PORT", c.HTTPPort)
	c.PostgresDSN = envString("POSTGRES_DSN", c.PostgresDSN)
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)
	c.RedisAddr = envString("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envString("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = envInt("REDIS_DB", c.RedisDB)
	c.StorageDriver = strings.ToLower(envString("STORAGE_DRIVER", c.StorageDriver))
	c.MarketplaceAddress = envString("MARKETPLACE_ADDRESS", c.MarketplaceAddress)
	c.EventsTopic = envString("EVENTS_TOPIC", c.EventsTopic)
	c.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", c.OutboxBatchSize)
	c.WorkerPollInterval = envDuration("WORKER_POLL_INTERVAL", c.WorkerPollInterval)
	c.RunMigrations = envBool("RUN_MIGRATIONS", c.RunMigrations)
	c.EnableEventStream = envBool("ENABLE_EVENT_STREAM", c.EnableEventStream)
	c.RateLimitRPS = envFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = envInt("RATE_LIMIT_BURST", c.RateLimitBurst)

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) > 0 {
		c.KafkaBrokers = brokers
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when STORAGE_DRIVER=postgres"))
		}
		if strings.TrimSpace(c.RedisAddr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when STORAGE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if strings.TrimSpace(c.MarketplaceAddress) == "" {
		errs = append(errs, errors.New("MARKETPLACE_ADDRESS must not be empty"))
	}
	if strings.TrimSpace(c.HTTPPort) == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.WorkerPollInterval <= 0 {
		errs = append(errs, errors.New("WORKER_POLL_INTERVAL must be positive"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive when rate limiting is on"))
	}
	return errors.Join(errs...)
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
