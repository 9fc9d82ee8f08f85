package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	// Backend selects the document store: "memory", "postgres" or "mongo".
	Backend      string `yaml:"backend"`
	PostgresDSN  string `yaml:"postgres_dsn"`
	MongoURI     string `yaml:"mongo_uri"`
	DatabaseName string `yaml:"database_name"`
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type EventsConfig struct {
	// NatsURL enables change-event publishing when set.
	NatsURL string `yaml:"nats_url"`
}

type CacheConfig struct {
	// RedisAddr enables the advisory checkpoint cache when set.
	RedisAddr string `yaml:"redis_addr"`
}

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	API     APIConfig     `yaml:"api"`
	Events  EventsConfig  `yaml:"events"`
	Cache   CacheConfig   `yaml:"cache"`
}

// LoadConfig builds the configuration by layering, in order of
// increasing precedence: defaults, config/config.yml,
// config/config.local.yml, environment variables.
func LoadConfig() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			Backend:      "memory",
			PostgresDSN:  "postgres://localhost:5432/rxdb?sslmode=disable",
			MongoURI:     "mongodb://localhost:27017",
			DatabaseName: "rxdb",
		},
		API: APIConfig{
			Port: 8080,
		},
	}

	loadFile(cfg, "config/config.yml")
	loadFile(cfg, "config/config.local.yml")
	loadEnv(cfg)

	return cfg
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[Config] Ignoring %s: %v", path, err)
	}
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Storage.MongoURI = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Storage.DatabaseName = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Events.NatsURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
}
