package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	API        API     `yaml:"api"`
	Session    Session `yaml:"session"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// API describes how the console reaches the content backend.
type API struct {
	BaseURL    string        `yaml:"base_url" env:"API_URL" env-default:"https://test-fe.mysellerpintar.com/api"`
	Timeout    time.Duration `yaml:"timeout" env-default:"0s"`
	Retries    int           `yaml:"retries" env-default:"3"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"1s"`
}

type Session struct {
	Secret      string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TTL         time.Duration `yaml:"ttl" env-default:"24h"`
	Store       string        `yaml:"store" env:"SESSION_STORE" env-default:"sqlite"`
	StoragePath string        `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./storage/sessions.db"`
	GateDelay   time.Duration `yaml:"gate_delay" env-default:"1s"`
	Redis       Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	cfg, err := Load(path)
	if err != nil {
		log.Panicf("error loading config: %v", err)
	}

	return cfg
}

// Load reads the YAML file at path and applies environment overrides on top of it.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: error opening config file: %w", op, err)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: error reading config file: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}

	if c.API.Retries < 0 {
		return fmt.Errorf("api retries must not be negative, got %d", c.API.Retries)
	}

	return nil
}

func fetchConfigPath() string {
	var path string
	flag.StringVar(&path, "config", "", "sets path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	return path
}
