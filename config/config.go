package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config contains the application settings.
type Config struct {
	Env       string `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"console"`

	CheckIntervalMinutes int           `yaml:"check_interval_minutes" env:"CHECK_INTERVAL_MINUTES" env-default:"360"`
	CheckInterval        time.Duration `yaml:"-"`
	DigestInterval       time.Duration `yaml:"digest_interval" env:"DIGEST_INTERVAL" env-default:"24h"`
	RequestInterval      time.Duration `yaml:"sync_request_interval" env:"SYNC_REQUEST_INTERVAL" env-default:"1s"`
	SyncLockTTL          time.Duration `yaml:"sync_lock_ttl" env:"SYNC_LOCK_TTL" env-default:"15m"`

	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET"`
	CronSecret string `yaml:"cron_secret" env:"CRON_SECRET"`

	Database   `yaml:"database"`
	Redis      `yaml:"redis"`
	HTTPServer `yaml:"http_server"`
	Amazon     `yaml:"amazon"`
	Cuelinks   `yaml:"cuelinks"`
	Telegram   `yaml:"telegram"`
	AWS        `yaml:"aws"`
	SMTP       `yaml:"smtp"`
	RabbitMQ   `yaml:"rabbitmq"`
}

type Database struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite3"`
	Path   string `yaml:"path" env:"DATABASE_PATH" env-default:"./bachatlist.db"`
	URL    string `yaml:"url" env:"DATABASE_URL"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Amazon struct {
	// BaseURL replaces the regional PA-API host when set.
	BaseURL string `yaml:"base_url" env:"AMAZON_BASE_URL"`
}

type Cuelinks struct {
	APIKey  string `yaml:"api_key" env:"CUELINKS_API_KEY"`
	BaseURL string `yaml:"base_url" env:"CUELINKS_BASE_URL" env-default:"https://www.cuelinks.com/api/v2"`
}

type Telegram struct {
	APIEndpoint string `yaml:"api_endpoint" env:"TELEGRAM_API_ENDPOINT"`
}

type AWS struct {
	Region string `yaml:"region" env:"AWS_REGION" env-default:"ap-south-1"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"deals@bachatlist.in"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL"`
	QueueName string `yaml:"queue_name" env:"RABBITMQ_QUEUE" env-default:"bachatlist_notifications"`
}

// Load reads the settings from CONFIG_PATH (when set) and the environment.
func Load() (*Config, error) {
	const op = "config.Load"

	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: config file does not exist: %s", op, path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.CheckInterval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute

	return &cfg, nil
}

// Validate checks values that cleanenv cannot express as tags.
func (c *Config) Validate() error {
	if c.CheckIntervalMinutes <= 0 {
		return errors.New("CHECK_INTERVAL_MINUTES must be positive")
	}
	if c.RequestInterval < 0 {
		return errors.New("SYNC_REQUEST_INTERVAL must not be negative")
	}

	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for sqlite3")
		}
	case "pgx":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for pgx")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	return nil
}
