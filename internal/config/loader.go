package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"roost/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/roost"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the specified directory, layered
// over the defaults. A missing file is not an error; a malformed one is.
func LoadConfig(configPath string) (RoostConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return RoostConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return RoostConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
