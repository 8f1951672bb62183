// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to the OS keychain.
//
// Precedence, lowest first: built-in defaults, config.json, a .env file in
// the working directory, TRIPMART_* environment variables, command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tripmart/cli/internal/endpoint"
	"tripmart/cli/internal/xdg"
)

const (
	EnvPrefix = "TRIPMART"

	DefaultAPIURL    = "http://localhost:8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultTimeout   = 15 * time.Second
	DefaultOutput    = "table"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Output         string        `mapstructure:"output"`
	KeyringBackend string        `mapstructure:"keyring_backend"`
}

// fileConfig is the on-disk form of Config.
type fileConfig struct {
	APIURL         string `json:"api_url,omitempty"`
	LogLevel       string `json:"log_level,omitempty"`
	LogFormat      string `json:"log_format,omitempty"`
	Timeout        string `json:"timeout,omitempty"`
	Output         string `json:"output,omitempty"`
	KeyringBackend string `json:"keyring_backend,omitempty"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-url": "api_url",
	"timeout": "timeout",
	"output":  "output",
}

// LoadOptions tunes Load.
type LoadOptions struct {
	// Flags, when set, override every other source for the flags in flagKeys
	// that were set explicitly.
	Flags *pflag.FlagSet
	// EnvFile is the dotenv file to read. Empty means ".env"; a missing file
	// is not an error.
	EnvFile string
	// Path overrides the config file location (tests).
	Path string
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("keyring_backend", "")
	for _, key := range []string{"api_url", "log_level", "log_format", "timeout", "output", "keyring_backend"} {
		_ = v.BindEnv(key)
	}
	return v
}

// Load resolves the effective configuration.
func Load(opts LoadOptions) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	v := newViper()

	p := opts.Path
	if p == "" {
		var err error
		if p, err = path(); err != nil {
			return Config{}, err
		}
	}
	v.SetConfigFile(p)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", p, err)
	}

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			if f := opts.Flags.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	normalized, _ := endpoint.Normalize(c.APIURL)
	c.APIURL = normalized
	return c, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := endpoint.Validate(c.APIURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("output must be table or json, got %q", c.Output)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	fc := fileConfig{
		APIURL:         c.APIURL,
		LogLevel:       c.LogLevel,
		LogFormat:      c.LogFormat,
		Output:         c.Output,
		KeyringBackend: c.KeyringBackend,
	}
	if c.Timeout > 0 {
		fc.Timeout = c.Timeout.String()
	}
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
