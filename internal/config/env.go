package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"azdo-mcp/pkg/logging"
)

// Environment variables read by azdo-mcp.
const (
	EnvOrganization   = "AZURE_DEVOPS_ORG"
	EnvAuthentication = "AZURE_DEVOPS_AUTH"
	EnvPAT            = "AZURE_DEVOPS_PAT"
	EnvDomains        = "AZURE_DEVOPS_DOMAINS"
	EnvTenant         = "AZURE_DEVOPS_TENANT"
	EnvPort           = "PORT"
	EnvTransport      = "AZDO_MCP_TRANSPORT"
	EnvSmitheryMode   = "SMITHERY_MODE"
	EnvCodespaces     = "CODESPACES"
	EnvCodespaceName  = "CODESPACE_NAME"
)

// LoadDotEnv loads variables from a .env file without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return ConfigurationError{
			Source:    SourceEnv,
			FilePath:  path,
			ErrorType: ErrorTypeParse,
			Message:   "could not load .env file",
			Details:   err.Error(),
		}
	}
	logging.Debug("ConfigLoader", "Loaded environment from %s", path)
	return nil
}

// ApplyEnv overlays environment overrides on cfg.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return NewConfigurationError(SourceEnv, EnvPort, ErrorTypeInvalid, fmt.Sprintf("invalid port %q", v))
		}
		cfg.HTTP.Port = port
	}
	return nil
}

// HTTPBridgeRequested reports whether the environment asks the root command
// to serve the stateless HTTP bridge instead of stdio.
func HTTPBridgeRequested() bool {
	if strings.EqualFold(os.Getenv(EnvTransport), "http") {
		return true
	}
	return os.Getenv(EnvSmitheryMode) != ""
}

// InCodespace reports whether the process runs in a GitHub Codespace.
func InCodespace() bool {
	return os.Getenv(EnvCodespaces) == "true" && os.Getenv(EnvCodespaceName) != ""
}

// DefaultAuthentication returns the authentication used when none is given:
// azcli inside a Codespace, interactive otherwise.
func DefaultAuthentication() string {
	if InCodespace() {
		return "azcli"
	}
	return "interactive"
}

// SessionFromEnv builds the session configuration of the stateless bridge.
// Authentication defaults to pat.
func SessionFromEnv() SessionConfig {
	sc := SessionConfig{
		Organization:   strings.TrimSpace(os.Getenv(EnvOrganization)),
		Authentication: strings.TrimSpace(os.Getenv(EnvAuthentication)),
		PAT:            os.Getenv(EnvPAT),
		Tenant:         strings.TrimSpace(os.Getenv(EnvTenant)),
	}
	if sc.Authentication == "" {
		sc.Authentication = "pat"
	}
	if v := os.Getenv(EnvDomains); v != "" {
		sc.Domains = []string{v}
	}
	return sc
}
