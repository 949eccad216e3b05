package modules

import "fmt"

type NotificationConfig struct {
	BaseConfig
	Title   string `yaml:"title" json:"title" default:"HookShot"`
	IconURL string `yaml:"icon_url" json:"icon_url" default:"icons/icon48.png" envconfig:"ICON_URL"`
	History int    `yaml:"history" json:"history" default:"50"`
}

func (cfg NotificationConfig) Validate() error {
	if cfg.History < 0 {
		return fmt.Errorf("notification.history cannot be negative")
	}
	return nil
}
