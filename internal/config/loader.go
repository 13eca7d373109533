package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"specrun/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/specrun"
	projectConfigDir = ".specrun"
	configFileName   = "config.yaml"
)

// LoadConfig loads the specrun configuration by layering default, user and
// project settings, then the file at explicitPath when it is not empty.
// A missing user or project file is not an error; a missing explicit file is.
func LoadConfig(explicitPath string) (SpecrunConfig, error) {
	config := GetDefaultConfig()

	for _, layer := range []struct {
		name string
		path func() (string, error)
	}{
		{"user", getUserConfigPath},
		{"project", getProjectConfigPath},
	} {
		path, err := layer.path()
		if err != nil {
			logging.Warn("Config", "Could not determine %s config path: %v", layer.name, err)
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		overlay, err := loadConfigFromFile(path)
		if err != nil {
			return SpecrunConfig{}, fmt.Errorf("error loading %s config from %s: %w", layer.name, path, err)
		}
		logging.Debug("Config", "Loaded %s config from %s", layer.name, path)
		config = mergeConfigs(config, overlay)
	}

	if explicitPath != "" {
		overlay, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return SpecrunConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, overlay)
	}

	if err := config.Validate(); err != nil {
		return SpecrunConfig{}, err
	}
	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a SpecrunConfig from a YAML file.
func loadConfigFromFile(filePath string) (SpecrunConfig, error) {
	var config SpecrunConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return SpecrunConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return SpecrunConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Fields set in the
// overlay win; filter lists replace the base lists instead of extending them.
func mergeConfigs(base, overlay SpecrunConfig) SpecrunConfig {
	merged := base

	if overlay.GlobalSettings.LogLevel != "" {
		merged.GlobalSettings.LogLevel = overlay.GlobalSettings.LogLevel
	}
	if overlay.GlobalSettings.LogFormat != "" {
		merged.GlobalSettings.LogFormat = overlay.GlobalSettings.LogFormat
	}

	if overlay.Run.Mode != "" {
		merged.Run.Mode = overlay.Run.Mode
	}
	if overlay.Run.Workers != 0 {
		merged.Run.Workers = overlay.Run.Workers
	}
	if overlay.Run.FailFast != nil {
		merged.Run.FailFast = overlay.Run.FailFast
	}
	if overlay.Run.TestTimeout != 0 {
		merged.Run.TestTimeout = overlay.Run.TestTimeout
	}
	if overlay.Run.RunTimeout != 0 {
		merged.Run.RunTimeout = overlay.Run.RunTimeout
	}

	if overlay.Output.Format != "" {
		merged.Output.Format = overlay.Output.Format
	}
	if overlay.Output.Verbose != nil {
		merged.Output.Verbose = overlay.Output.Verbose
	}
	if overlay.Output.NoColor != nil {
		merged.Output.NoColor = overlay.Output.NoColor
	}
	if overlay.Output.Width != 0 {
		merged.Output.Width = overlay.Output.Width
	}
	if overlay.Output.ReportDir != "" {
		merged.Output.ReportDir = overlay.Output.ReportDir
	}
	if overlay.Output.MetricsFile != "" {
		merged.Output.MetricsFile = overlay.Output.MetricsFile
	}

	if overlay.Filter.Suites != nil {
		merged.Filter.Suites = overlay.Filter.Suites
	}
	if overlay.Filter.Names != nil {
		merged.Filter.Names = overlay.Filter.Names
	}
	if overlay.Filter.IncludeTags != nil {
		merged.Filter.IncludeTags = overlay.Filter.IncludeTags
	}
	if overlay.Filter.ExcludeTags != nil {
		merged.Filter.ExcludeTags = overlay.Filter.ExcludeTags
	}

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
