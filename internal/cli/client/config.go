package client

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configFileName = "config.json"
	apiKeyPrefix   = "dcc_"
	apiKeyHexLen   = 64
)

// GlobalConfig is the persisted CLI login state.
type GlobalConfig struct {
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
}

// Indirection points so tests can redirect config I/O to a temp dir.
var (
	getConfigDirFunc  = defaultConfigDir
	getConfigPathFunc = defaultConfigPath
)

func defaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(base, "docchat"), nil
}

func defaultConfigPath() (string, error) {
	dir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetConfigDir returns the per-user directory holding CLI state.
func GetConfigDir() (string, error) { return getConfigDirFunc() }

// GetConfigPath returns the path of the CLI config file.
func GetConfigPath() (string, error) { return getConfigPathFunc() }

// LoadGlobalConfig reads the stored login. A missing file is not an error;
// it just means the user never ran init.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// SaveGlobalConfig persists the login with owner-only permissions, since the
// file holds the API key in the clear.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DeleteGlobalConfig removes the stored login. Idempotent.
func DeleteGlobalConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// IsValidAPIKey reports whether key has the expected shape: the dcc_ prefix
// followed by 64 hex characters.
func IsValidAPIKey(key string) bool {
	rest, ok := strings.CutPrefix(key, apiKeyPrefix)
	if !ok || len(rest) != apiKeyHexLen {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
