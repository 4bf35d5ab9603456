package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StoreDriver string

const (
	StoreDriverMemory StoreDriver = "memory"
	StoreDriverRedis  StoreDriver = "redis"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version   string      `env:"APP_VERSION" envDefault:"local"`
		Env       Environment `env:"APP_ENV" envDefault:"local"`
		Timezone  string      `env:"APP_TIMEZONE" envDefault:"Europe/London"`
		LogFormat string      `env:"LOG_FORMAT" envDefault:"console"`
		LogLevel  string      `env:"LOG_LEVEL" envDefault:"info"`
		Location  *time.Location
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Calendly struct {
		URL            string        `env:"CALENDLY_URL" envDefault:"https://api.calendly.com"`
		APIToken       string        `env:"CALENDLY_API_TOKEN"`
		UserURI        string        `env:"CALENDLY_USER_URI"`
		Timeout        time.Duration `env:"CALENDLY_TIMEOUT" envDefault:"10s"`
		RateLimitRPS   float64       `env:"CALENDLY_RATE_LIMIT_RPS" envDefault:"5"`
		RateLimitBurst int           `env:"CALENDLY_RATE_LIMIT_BURST" envDefault:"10"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"appointment_booking:appointment_booking"`
		BasicClients       []ConfigBasicClient
	}

	Slots struct {
		IntervalMinutes int `env:"SLOTS_INTERVAL_MINUTES" envDefault:"15"`
		Workers         int `env:"SLOTS_WORKERS" envDefault:"8"`
	}

	Store struct {
		Driver      StoreDriver `env:"STORE_DRIVER" envDefault:"memory"`
		HistorySize int         `env:"STORE_HISTORY_SIZE" envDefault:"1000"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"appointment-booking"`
	}
}

// NewConfig reads .env (when present) and the process environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() error {
	// Normalise env casing
	c.App.Env = Environment(strings.ToLower(string(c.App.Env)))

	location, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	c.App.Location = location

	c.Auth.BasicClients = parseBasicClients(c.Auth.BasicClientsString)

	if c.Slots.IntervalMinutes <= 0 {
		return fmt.Errorf("SLOTS_INTERVAL_MINUTES must be positive, got %d", c.Slots.IntervalMinutes)
	}
	if c.Slots.Workers <= 0 {
		c.Slots.Workers = 1
	}

	c.Store.Driver = StoreDriver(strings.ToLower(string(c.Store.Driver)))
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return errors.New("RABBITMQ_URL is required when RABBITMQ_ENABLED is set")
	}

	return nil
}

func parseBasicClients(raw string) []ConfigBasicClient {
	clients := []ConfigBasicClient{}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			clients = append(clients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}
	return clients
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
