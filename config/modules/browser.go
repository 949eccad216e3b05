package modules

import (
	"fmt"
	"net/url"
	"slices"
)

var DefaultPrivilegedSchemes = []string{
	"chrome",
	"chrome-extension",
	"chrome-untrusted",
	"devtools",
	"edge",
}

type BrowserConfig struct {
	BaseConfig
	DevToolsURL string `yaml:"devtools_url" json:"devtools_url" default:"http://127.0.0.1:9222" envconfig:"DEVTOOLS_URL"`
	// SettleDelay is the delay in milliseconds between injecting the capture
	// agent and probing it.
	SettleDelay       int64    `yaml:"settle_delay" json:"settle_delay" default:"200" envconfig:"SETTLE_DELAY"`
	CacheSize         int      `yaml:"cache_size" json:"cache_size" default:"256" envconfig:"CACHE_SIZE"`
	PrivilegedSchemes []string `yaml:"privileged_schemes" json:"privileged_schemes" envconfig:"PRIVILEGED_SCHEMES"`
	Watch             bool     `yaml:"watch" json:"watch" default:"true"`
}

func (cfg *BrowserConfig) PostProcess() error {
	if len(cfg.PrivilegedSchemes) == 0 {
		cfg.PrivilegedSchemes = slices.Clone(DefaultPrivilegedSchemes)
	}
	return nil
}

func (cfg BrowserConfig) Validate() error {
	if cfg.DevToolsURL != "" {
		u, err := url.Parse(cfg.DevToolsURL)
		if err != nil {
			return fmt.Errorf("invalid devtools url: %s", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("devtools url schema must be http or https")
		}
	}
	if cfg.SettleDelay < 0 {
		return fmt.Errorf("browser.settle_delay cannot be negative")
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("browser.cache_size must be positive")
	}
	return nil
}

func (cfg BrowserConfig) IsEnabled() bool {
	return cfg.DevToolsURL != ""
}
