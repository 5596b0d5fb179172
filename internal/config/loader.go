package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultKeysPath is the keys file read when VELOCITY_KEYS is unset.
const DefaultKeysPath = "keys.sh"

// Load reads configuration and validates it.
// Priority: ENV > keys file > YAML > defaults (via env-default tags).
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Read loads configuration without validating it, so callers can apply
// overrides first. The YAML file path is determined by CONFIG_PATH
// (fallback "./velocity.yaml"). If the file does not exist and CONFIG_PATH
// was not set explicitly, configuration comes from ENV + defaults only.
func Read() (*Config, error) {
	keys := os.Getenv("VELOCITY_KEYS")
	explicitKeys := keys != ""
	if !explicitKeys {
		keys = DefaultKeysPath
	}
	if err := LoadKeys(keys); err != nil {
		if explicitKeys || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./velocity.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}
	return &cfg, nil
}

// LoadKeys exports the settings in a keys file ("export KEY=value" lines)
// into the process environment. Variables already set are left alone.
func LoadKeys(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: keys %s: %w", path, err)
	}
	return nil
}

// ParseKeys parses keys file text into a map.
func ParseKeys(text string) (map[string]string, error) {
	m, err := godotenv.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("config: parse keys: %w", err)
	}
	return m, nil
}
