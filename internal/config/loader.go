package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override config keys,
// e.g. LLMSTACK_TIKA_IMAGE_TAG.
const EnvPrefix = "LLMSTACK"

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Load reads the configuration from the given filename (e.g., "llmstack.yaml").
// Keys missing from the file keep their defaults and unknown keys are ignored.
func Load(filename string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filename)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s. Run 'llmstack init' to create one", ErrNotFound, filename)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

// LoadDefaults builds a Config from defaults and environment overrides only.
func LoadDefaults() (*Config, error) {
	return decode(newViper())
}

// Write stores cfg as YAML at path, creating parent directories.
// An existing file is never overwritten.
func Write(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("openwebui_image_tag", DefaultOpenWebUIImageTag)
	v.SetDefault("tika_image_tag", DefaultTikaImageTag)
	v.SetDefault("namespace", DefaultNamespace)
	v.SetDefault("data_dir", "")
	v.SetDefault("pull_concurrency", DefaultPullConcurrency)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Viper fills the struct fields based on the mapstructure tags
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}
