// Package config loads logbridge startup settings from flags, environment
// (LOGBRIDGE_*) and an optional config file through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jingkaihe/logbridge/internal/errx"
)

const EnvPrefix = "LOGBRIDGE"

// Keys, also used as flag names.
const (
	KeyPanicHook     = "panic-hook"
	KeySocket        = "socket"
	KeyBeatsEndpoint = "beats-endpoint"
	KeyBeatsTimeout  = "beats-timeout"
	KeyLabel         = "label"
	KeyFormat        = "format"
)

// Output formats for the tail command.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

const (
	DefaultLabel        = "logbridge"
	DefaultBeatsTimeout = 3 * time.Second
)

// DefaultSocket is where tail listens and emit connects unless configured.
func DefaultSocket() string {
	return filepath.Join(os.TempDir(), "logbridge.sock")
}

type Config struct {
	// PanicHook installs the fatal panic hook when the relay is initialized.
	PanicHook     bool
	Socket        string
	BeatsEndpoint string
	BeatsTimeout  time.Duration
	Label         string
	Format        string
}

// EnvName returns the environment variable NewViper reads for key,
// e.g. LOGBRIDGE_BEATS_ENDPOINT.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// NewViper returns a viper instance with defaults and LOGBRIDGE_* env
// binding (dashes become underscores, e.g. LOGBRIDGE_PANIC_HOOK).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyPanicHook, false)
	v.SetDefault(KeySocket, DefaultSocket())
	v.SetDefault(KeyBeatsEndpoint, "")
	v.SetDefault(KeyBeatsTimeout, DefaultBeatsTimeout)
	v.SetDefault(KeyLabel, DefaultLabel)
	v.SetDefault(KeyFormat, FormatAuto)
	return v
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errx.Wrap(ErrReadConfig, err)
	}
	return nil
}

// Load reads a validated Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		PanicHook:     v.GetBool(KeyPanicHook),
		Socket:        v.GetString(KeySocket),
		BeatsEndpoint: v.GetString(KeyBeatsEndpoint),
		BeatsTimeout:  v.GetDuration(KeyBeatsTimeout),
		Label:         v.GetString(KeyLabel),
		Format:        strings.ToLower(v.GetString(KeyFormat)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatAuto, FormatText, FormatJSON:
	default:
		return errx.With(ErrInvalidConfig, fmt.Sprintf(": format %q must be one of auto, text, json", c.Format))
	}
	if c.Socket == "" && c.BeatsEndpoint == "" {
		return errx.With(ErrInvalidConfig, ": socket or beats-endpoint is required")
	}
	if c.BeatsTimeout < 0 {
		return errx.With(ErrInvalidConfig, ": beats-timeout must not be negative")
	}
	return nil
}
