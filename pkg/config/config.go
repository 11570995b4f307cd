// Package config loads doapp configuration using koanf: embedded
// defaults, then an optional doapp.toml in the config dir, then DOAPP_*
// environment variables, each layer overriding the previous one.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/types"
)

//go:embed doapp.toml
var defaultConfig []byte

// Config is the resolved doapp configuration.
type Config struct {
	Install struct {
		Scope    string `koanf:"scope"`
		LinkMode string `koanf:"link_mode"`
	} `koanf:"install"`
	Archive struct {
		Format string `koanf:"format"`
	} `koanf:"archive"`
}

// Scope returns the configured default scope.
func (c *Config) Scope() types.Scope {
	return types.Scope(c.Install.Scope)
}

// LinkMode returns the configured default link mode.
func (c *Config) LinkMode() types.LinkMode {
	return types.LinkMode(c.Install.LinkMode)
}

// Load builds the configuration for the given config dir. A missing user
// config file is not an error; a malformed one is.
func Load(configDir string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file, if present
	path := filepath.Join(configDir, "doapp.toml")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	// 3. Environment overrides: DOAPP_INSTALL_SCOPE -> install.scope
	envProvider := env.Provider("DOAPP_", ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, "DOAPP_")), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	if !cfg.Scope().IsValid() {
		return nil, errors.Newf(errors.ErrConfigParse, "invalid install.scope %q", cfg.Install.Scope)
	}

	return &cfg, nil
}

// rawBytesProvider implements koanf.Provider for embedded bytes
type rawBytesProvider struct {
	bytes []byte
}

func (r *rawBytesProvider) ReadBytes() ([]byte, error) {
	return r.bytes, nil
}

func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "rawBytesProvider does not support Read")
}
