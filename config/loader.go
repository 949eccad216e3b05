package config

import (
	"github.com/webhookx-io/hookshot/config/providers"
)

// Loader is configuration loader
type Loader struct {
	cfg         *Config
	envPrefix   string
	filename    string
	fileContent []byte
}

func NewLoader(cfg *Config) *Loader {
	return &Loader{cfg: cfg}
}

func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

func (l *Loader) WithFilename(filename string) *Loader {
	l.filename = filename
	return l
}

func (l *Loader) WithFileContent(content []byte) *Loader {
	l.fileContent = content
	return l
}

// Load applies the environment first and the YAML file second, so a value
// present in the file wins over the environment.
func (l *Loader) Load() error {
	cfg := l.cfg

	if l.envPrefix != "" {
		err := providers.NewEnvProvider(l.envPrefix).Load(cfg)
		if err != nil {
			return err
		}
	}

	err := providers.NewYAMLProvider(l.filename, l.fileContent).Load(cfg)
	if err != nil {
		return err
	}

	return cfg.PostProcess()
}

func Load(filename string, cfg *Config) error {
	return NewLoader(cfg).WithEnvPrefix("HOOKSHOT").WithFilename(filename).Load()
}
