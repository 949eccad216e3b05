package modules

import (
	"fmt"
	"net/netip"
	"regexp"
	"slices"
)

type DeliveryConfig struct {
	BaseConfig
	MaxAttempts uint32 `yaml:"max_attempts" json:"max_attempts" default:"3" envconfig:"MAX_ATTEMPTS"`
	// Timeout is the per-attempt timeout in milliseconds.
	Timeout int64 `yaml:"timeout" json:"timeout" default:"10000"`
	// BackoffBase is the delay in milliseconds before the second attempt,
	// doubled before every following attempt.
	BackoffBase int64     `yaml:"backoff_base" json:"backoff_base" default:"1000" envconfig:"BACKOFF_BASE"`
	ACL         ACLConfig `yaml:"acl" json:"acl"`
}

func (cfg *DeliveryConfig) Validate() error {
	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 10 {
		return fmt.Errorf("delivery.max_attempts must be in the range [1, 10]")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("delivery.timeout must be positive")
	}
	if cfg.BackoffBase < 0 {
		return fmt.Errorf("delivery.backoff_base cannot be negative")
	}
	if err := cfg.ACL.Validate(); err != nil {
		return err
	}
	return nil
}

type ACLConfig struct {
	Deny []string `yaml:"deny" json:"deny"`
}

func (acl *ACLConfig) Validate() error {
	for _, rule := range acl.Deny {
		if err := validateRule(rule); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(rule string) error {
	groups := []string{"@default", "@private", "@loopback", "@linklocal", "@reserved"}
	if slices.Contains(groups, rule) {
		return nil
	}
	if _, err := netip.ParseAddr(rule); err == nil {
		return nil
	}
	if _, err := netip.ParsePrefix(rule); err == nil {
		return nil
	}
	r := regexp.MustCompile(`^(\*\.)?[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)+$`)
	if matched := r.MatchString(rule); matched {
		return nil
	}
	return fmt.Errorf("invalid rule '%s': requires IP, CIDR, hostname, or pre-configured name", rule)
}
