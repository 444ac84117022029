package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"MarketBrief/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Symbols  []string `yaml:"symbols" validate:"required,min=1,dive,required"`
	Schedule struct {
		Cron string `yaml:"cron"` // empty disables the scheduled trigger
	} `yaml:"schedule"`
	Yahoo struct {
		BaseURL string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
		Timeout time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"yahoo"`
	News struct {
		BaseURL string        `yaml:"base_url" default:"https://financialmodelingprep.com" validate:"url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"news"`
	Swarms struct {
		BaseURL string        `yaml:"base_url" default:"https://swarms-api-285321057562.us-east1.run.app" validate:"url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"120s"`
	} `yaml:"swarms"`
	Mailgun struct {
		BaseURL   string        `yaml:"base_url" default:"https://api.mailgun.net" validate:"url"`
		APIKey    string        `yaml:"api_key"`
		Domain    string        `yaml:"domain"`
		Recipient string        `yaml:"recipient"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"mailgun"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl" default:"60s"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic" default:"marketbrief.runs"`
		Compression string   `yaml:"compression" default:"gzip"`
	} `yaml:"kafka"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Credentials are expected to arrive via env in every deployed environment;
// the YAML fields exist for local development only.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SWARMS_API_KEY"); v != "" {
		c.Swarms.APIKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("MAILGUN_API_KEY"); v != "" {
		c.Mailgun.APIKey = v
	}
	if v := os.Getenv("MAILGUN_DOMAIN"); v != "" {
		c.Mailgun.Domain = v
	}
	if v := os.Getenv("RECIPIENT_EMAIL"); v != "" {
		c.Mailgun.Recipient = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		c.Schedule.Cron = v
	}

	return c, nil
}

// Validate checks if the configuration is valid. The Swarms API key is
// deliberately not required here: the service must still boot and serve
// /status without it, failing individual runs instead.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// EmailConfigured reports whether all three delivery credentials are present.
func (c *Config) EmailConfigured() bool {
	return c.Mailgun.APIKey != "" && c.Mailgun.Domain != "" && c.Mailgun.Recipient != ""
}
