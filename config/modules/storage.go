package modules

import (
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/hookshot/config/types"
)

type StorageDriver string

const (
	StorageDriverMemory StorageDriver = "memory"
	StorageDriverSQLite StorageDriver = "sqlite"
	StorageDriverRedis  StorageDriver = "redis"
)

type SQLiteConfig struct {
	DSN string `yaml:"dsn" json:"dsn" default:"hookshot.db" envconfig:"DSN"`
	// PollInterval is the interval in milliseconds at which changes made by
	// other processes are picked up.
	PollInterval uint32 `yaml:"poll_interval" json:"poll_interval" default:"1000" envconfig:"POLL_INTERVAL"`
}

type RedisConfig struct {
	Host     string         `yaml:"host" json:"host" default:"localhost"`
	Port     uint32         `yaml:"port" json:"port" default:"6379"`
	Password types.Password `yaml:"password" json:"password" default:""`
	Database uint32         `yaml:"database" json:"database" default:"0"`
	Prefix   string         `yaml:"prefix" json:"prefix" default:"hookshot:"`
}

func (cfg RedisConfig) GetClient() *redis.Client {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: string(cfg.Password),
		DB:       int(cfg.Database),
	}
	return redis.NewClient(options)
}

type StorageConfig struct {
	BaseConfig
	Driver StorageDriver `yaml:"driver" json:"driver" default:"sqlite"`
	SQLite SQLiteConfig  `yaml:"sqlite" json:"sqlite" envconfig:"SQLITE"`
	Redis  RedisConfig   `yaml:"redis" json:"redis" envconfig:"REDIS"`
}

func (cfg StorageConfig) Validate() error {
	if !slices.Contains([]StorageDriver{StorageDriverMemory, StorageDriverSQLite, StorageDriverRedis}, cfg.Driver) {
		return fmt.Errorf("invalid storage driver: %s", cfg.Driver)
	}
	if cfg.Driver == StorageDriverSQLite && cfg.SQLite.DSN == "" {
		return fmt.Errorf("storage.sqlite.dsn is required")
	}
	if cfg.Redis.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	return nil
}
