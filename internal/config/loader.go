package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"azdo-mcp/pkg/logging"
)

const (
	userConfigDir  = ".config/azdo-mcp"
	configFileName = "config.yaml"

	tenantCacheFileName = "org-tenants.yaml"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/azdo-mcp.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath over the defaults. A missing
// file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	config.TenantCache.Path = filepath.Join(configPath, tenantCacheFileName)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, ConfigurationError{
			Source:    SourceFile,
			FilePath:  configFilePath,
			ErrorType: ErrorTypeIO,
			Message:   "could not read configuration file",
			Details:   err.Error(),
		}
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, ConfigurationError{
			Source:      SourceFile,
			FilePath:    configFilePath,
			ErrorType:   ErrorTypeParse,
			Message:     "malformed configuration file",
			Details:     err.Error(),
			Suggestions: []string{"Check the YAML syntax", "Durations use Go syntax, e.g. 30m or 168h"},
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	if config.TenantCache.Path == "" {
		config.TenantCache.Path = filepath.Join(configPath, tenantCacheFileName)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// Validate checks the values that cannot be corrected by defaults.
func (c Config) Validate() error {
	var errs ConfigurationErrorCollection
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs.Add(NewConfigurationError(SourceFile, "http.port", ErrorTypeInvalid,
			fmt.Sprintf("port %d is out of range", c.HTTP.Port)))
	}
	if c.HTTP.Endpoint != "" && c.HTTP.Endpoint[0] != '/' {
		errs.Add(NewConfigurationError(SourceFile, "http.endpoint", ErrorTypeInvalid,
			"endpoint must start with /"))
	}
	if c.HTTP.SessionTTL < 0 {
		errs.Add(NewConfigurationError(SourceFile, "http.sessionTTL", ErrorTypeInvalid, "must not be negative"))
	}
	if c.HTTP.MaxSessions < 0 {
		errs.Add(NewConfigurationError(SourceFile, "http.maxSessions", ErrorTypeInvalid, "must not be negative"))
	}
	if c.Defaults.Authentication != "" && !isStrategy(c.Defaults.Authentication) {
		errs.Add(ConfigurationError{
			Source:      SourceFile,
			Field:       "defaults.authentication",
			ErrorType:   ErrorTypeInvalid,
			Message:     fmt.Sprintf("unknown authentication %q", c.Defaults.Authentication),
			Suggestions: []string{"Use one of: " + joinStrategies()},
		})
	}
	return errs.ErrorOrNil()
}
