package modules

import "fmt"

type MenuConfig struct {
	BaseConfig
	Title string `yaml:"title" json:"title" default:"HookShot"`
	// SettleDelay is the delay in milliseconds between removing the old menu
	// and creating the new one.
	SettleDelay int64 `yaml:"settle_delay" json:"settle_delay" default:"100" envconfig:"SETTLE_DELAY"`
}

func (cfg MenuConfig) Validate() error {
	if cfg.Title == "" {
		return fmt.Errorf("menu.title is required")
	}
	if cfg.SettleDelay < 0 {
		return fmt.Errorf("menu.settle_delay cannot be negative")
	}
	return nil
}
