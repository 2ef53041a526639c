package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Backend struct {
		Type      string `yaml:"type"` // "clickhouse" or "kafka"
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"backend"`
	Coinbase struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		RESTURL        string        `yaml:"rest_url"`
		Products       []string      `yaml:"products"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"coinbase"`
	Backfill struct {
		PageCap  int           `yaml:"page_cap"`
		DelayMin time.Duration `yaml:"delay_min"`
		DelayMax time.Duration `yaml:"delay_max"`
	} `yaml:"backfill"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
}

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

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("COINBASE_PRODUCTS"); v != "" {
		c.Coinbase.Products = splitList(v)
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

// splitList splits a comma-separated env value, trimming whitespace and
// dropping empty elements.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Coinbase.WebSocketURL == "" {
		c.Coinbase.WebSocketURL = "wss://ws-feed.pro.coinbase.com"
	}
	if c.Coinbase.RESTURL == "" {
		c.Coinbase.RESTURL = "https://api.pro.coinbase.com"
	}
	if c.Coinbase.ReconnectDelay == 0 {
		c.Coinbase.ReconnectDelay = 5 * time.Second
	}
	if c.Coinbase.PingInterval == 0 {
		c.Coinbase.PingInterval = 30 * time.Second
	}
	if c.Coinbase.RequestTimeout == 0 {
		c.Coinbase.RequestTimeout = 30 * time.Second
	}
	if c.Backend.BatchSize == 0 {
		c.Backend.BatchSize = 5000
	}
	if c.Backfill.PageCap == 0 {
		c.Backfill.PageCap = 300
	}
	if c.Backfill.DelayMax == 0 {
		c.Backfill.DelayMax = 2 * time.Second
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Coinbase.Products) == 0 {
		return fmt.Errorf("coinbase.products cannot be empty")
	}
	if c.Backend.BatchSize < 1 {
		return fmt.Errorf("backend.batch_size must be positive")
	}
	if c.Backfill.DelayMin > c.Backfill.DelayMax {
		return fmt.Errorf("backfill.delay_min must not exceed delay_max")
	}
	return nil
}
