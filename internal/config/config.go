package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/utils"
)

var ErrUnknownSetting = errors.New("unknown setting")

// Config is the contents of config.yaml
type Config struct {
	Timezone      string `yaml:"timezone"`
	BackupOnWrite bool   `yaml:"backup_on_write"`
	DataPath      string `yaml:"data_path,omitempty"`
}

func Default() Config {
	return Config{
		Timezone:      constants.DefaultTimezone,
		BackupOnWrite: constants.DefaultBackupOnWrite,
	}
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func FilePath(dir string) string {
	return filepath.Join(dir, constants.ConfigFileName)
}

// Load reads <dir>/config.yaml over the defaults. A missing file is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(FilePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", FilePath(dir), err)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = constants.DefaultTimezone
	}
	if !utils.ValidateTimezone(cfg.Timezone) {
		return Default(), fmt.Errorf("invalid timezone %q in %s", cfg.Timezone, FilePath(dir))
	}

	logger.Debug("Loaded config", "path", FilePath(dir), "timezone", cfg.Timezone)
	return cfg, nil
}

func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(FilePath(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Get returns a setting as display text
func (c Config) Get(key string) (string, error) {
	switch key {
	case constants.SettingTimezone:
		return c.Timezone, nil
	case constants.SettingBackupOnWrite:
		return strconv.FormatBool(c.BackupOnWrite), nil
	case constants.SettingDataPath:
		return c.DataPath, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
}

// Set parses and stores a setting
func (c *Config) Set(key, value string) error {
	switch key {
	case constants.SettingTimezone:
		if !utils.ValidateTimezone(value) {
			return fmt.Errorf("invalid timezone: %s", value)
		}
		c.Timezone = value
	case constants.SettingBackupOnWrite:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %s (expected true or false)", key, value)
		}
		c.BackupOnWrite = b
	case constants.SettingDataPath:
		c.DataPath = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return nil
}

// Keys lists the settings in display order
func Keys() []string {
	return []string{constants.SettingTimezone, constants.SettingBackupOnWrite, constants.SettingDataPath}
}

// LoadEnv loads <dir>/.env into the process environment without overriding
// variables that are already set.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, constants.EnvFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("Loaded environment file", "path", path)
	return nil
}

// ResolveDataPath picks the data path: the flag, then config.yaml, then the default file in dir.
func ResolveDataPath(flag string, cfg Config, dir string) (string, error) {
	path := flag
	if path == "" {
		path = cfg.DataPath
	}
	if path == "" {
		return filepath.Join(dir, constants.DefaultDataFile), nil
	}
	return ExpandPath(path)
}
