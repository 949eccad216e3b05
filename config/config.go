package config

import (
	"encoding/json"

	"github.com/creasty/defaults"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/config/types"
)

var _ types.Config = &Config{}

// Config Configuration
type Config struct {
	modules.BaseConfig
	Log          modules.LogConfig          `yaml:"log" json:"log" envconfig:"LOG"`
	Storage      modules.StorageConfig      `yaml:"storage" json:"storage" envconfig:"STORAGE"`
	Delivery     modules.DeliveryConfig     `yaml:"delivery" json:"delivery" envconfig:"DELIVERY"`
	Browser      modules.BrowserConfig      `yaml:"browser" json:"browser" envconfig:"BROWSER"`
	Menu         modules.MenuConfig         `yaml:"menu" json:"menu" envconfig:"MENU"`
	Admin        modules.AdminConfig        `yaml:"admin" json:"admin" envconfig:"ADMIN"`
	Notification modules.NotificationConfig `yaml:"notification" json:"notification" envconfig:"NOTIFICATION"`
	Metrics      modules.MetricsConfig      `yaml:"metrics" json:"metrics" envconfig:"METRICS"`
}

func (cfg *Config) PostProcess() error {
	return cfg.Browser.PostProcess()
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (cfg Config) Validate() error {
	validators := []types.Config{
		cfg.Log,
		cfg.Storage,
		&cfg.Delivery,
		&cfg.Browser,
		cfg.Menu,
		cfg.Admin,
		cfg.Notification,
		&cfg.Metrics,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	_ = cfg.PostProcess()
	return &cfg
}
