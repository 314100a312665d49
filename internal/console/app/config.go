package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers for the durable session slot.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	APIURL string `env:"CONSOLE_API_URL" envDefault:"http://localhost:8080/api"` // Backend base URL

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`     // sqlite or redis
	StorageFile   string `env:"STORAGE_FILE"   envDefault:"console.db"` // sqlite database file

	Redis RedisConfig `envPrefix:"REDIS_"`

	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT"       envDefault:"10s"` // Regular request timeout
	SessionTick      time.Duration `env:"SESSION_TICK"       envDefault:"1s"`  // Session clock period
	SessionWarning   time.Duration `env:"SESSION_WARNING"    envDefault:"2m"`  // Expiry warning threshold
	PingInterval     time.Duration `env:"PING_INTERVAL"      envDefault:"10s"` // Liveness probe period
	PingTimeout      time.Duration `env:"PING_TIMEOUT"       envDefault:"3s"`  // Liveness probe timeout
	ReconnectWindow  time.Duration `env:"RECONNECT_WINDOW"   envDefault:"2s"`  // How long "reconnected" shows
	RenewTimeout     time.Duration `env:"RENEW_TIMEOUT"      envDefault:"10s"` // Background renewal timeout
	RenewMinInterval time.Duration `env:"RENEW_MIN_INTERVAL" envDefault:"0s"`  // Renewal debounce, 0 = off

	Env       string `env:"ENV"        envDefault:"dev"`  // dev, staging, prod
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"` // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // json, text
	LogFile   string `env:"LOG_FILE"`                     // Rotated log file, stderr when empty
}

// RedisConfig is only read with STORAGE_DRIVER=redis.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`
	Prefix   string `env:"PREFIX"   envDefault:"console:"`
}

// LoadConfig reads the configuration from the environment, after loading a
// .env file if one exists.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Sanitize replaces out-of-range values with their defaults.
func (c *Config) Sanitize() {
	c.APIURL = strings.TrimSuffix(strings.TrimSpace(c.APIURL), "/")
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))

	positive := func(d *time.Duration, def time.Duration) {
		if *d <= 0 {
			*d = def
		}
	}
	positive(&c.HTTPTimeout, 10*time.Second)
	positive(&c.SessionTick, time.Second)
	positive(&c.SessionWarning, 2*time.Minute)
	positive(&c.PingInterval, 10*time.Second)
	positive(&c.PingTimeout, 3*time.Second)
	positive(&c.ReconnectWindow, 2*time.Second)
	positive(&c.RenewTimeout, 10*time.Second)

	if c.RenewMinInterval < 0 {
		c.RenewMinInterval = 0
	}

	// A probe must finish before the next one is due.
	if c.PingTimeout > c.PingInterval {
		c.PingTimeout = c.PingInterval
	}
}

// Validate reports settings that cannot be repaired.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("CONSOLE_API_URL is required")
	}
	switch c.StorageDriver {
	case StorageSQLite:
		if c.StorageFile == "" {
			return errors.New("STORAGE_FILE is required for the sqlite driver")
		}
	case StorageRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}
