package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

type Config struct {
	HTTPAddr string         `mapstructure:"http_addr"`
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	SeedDemo bool           `mapstructure:"seed_demo"`
}

type StoreConfig struct {
	Backend  string         `mapstructure:"backend"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	RecordTTL   time.Duration `mapstructure:"record_ttl"`
	QuantityTTL time.Duration `mapstructure:"quantity_ttl"`
}

type NotifierConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Load reads config.yaml when present and lets INVENTORY_* environment
// variables override any key (INVENTORY_CACHE_ADDR, INVENTORY_STORE_BACKEND, ...)
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http_addr", ":8083")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "inventory")
	v.SetDefault("store.postgres.password", "inventory")
	v.SetDefault("store.postgres.dbname", "inventory")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "inventory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.record_ttl", 5*time.Minute)
	v.SetDefault("cache.quantity_ttl", 30*time.Second)
	v.SetDefault("notifier.enabled", false)
	v.SetDefault("notifier.brokers", []string{"localhost:9092"})
	v.SetDefault("notifier.topic", "inventory-status-changes")
	v.SetDefault("seed_demo", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendPostgres, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return &cfg, nil
}
