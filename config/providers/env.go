package providers

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvProvider reads the process environment. Variables are named
// <PREFIX>_<FIELD>, with the prefix upper-cased whatever case it was given in.
type EnvProvider struct {
	prefix string
}

func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: strings.ToUpper(prefix)}
}

func (p *EnvProvider) Load(cfg any) error {
	return envconfig.Process(p.prefix, cfg)
}
