package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	want := GetDefaultConfig()
	want.TenantCache.Path = filepath.Join(dir, "org-tenants.yaml")
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_Override(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
defaults:
  organization: contoso
  authentication: azcli
  domains: [core, repositories]
http:
  port: 9090
  sessionTTL: 5m
tenantCache:
  ttl: 24h
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "contoso", cfg.Defaults.Organization)
	assert.Equal(t, "azcli", cfg.Defaults.Authentication)
	assert.Equal(t, []string{"core", "repositories"}, cfg.Defaults.Domains)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.HTTP.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.TenantCache.TTL)
	assert.Equal(t, filepath.Join(dir, "org-tenants.yaml"), cfg.TenantCache.Path)

	// Untouched values keep their defaults.
	assert.Equal(t, DefaultHost, cfg.HTTP.Host)
	assert.Equal(t, DefaultEndpoint, cfg.HTTP.Endpoint)
	assert.Equal(t, DefaultMaxSessions, cfg.HTTP.MaxSessions)
	assert.Equal(t, "localhost:9090", cfg.HTTP.Address())
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "http: [port")

	_, err := LoadConfig(dir)
	var cfgErr ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrorTypeParse, cfgErr.ErrorType)
	assert.Equal(t, SourceFile, cfgErr.Source)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
defaults:
  authentication: kerberos
http:
  port: 70000
  endpoint: mcp
`)

	_, err := LoadConfig(dir)
	var errs ConfigurationErrorCollection
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs.Errors, 3)
	assert.Contains(t, err.Error(), "http.port")
	assert.Contains(t, errs.GetDetailedReport(), "interactive, azcli, env, pat")
}

func TestGetDefaultConfigPath(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()

	osUserHomeDir = func() (string, error) { return "/home/dev", nil }
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/dev", ".config", "azdo-mcp"), path)

	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	_, err = GetDefaultConfigPath()
	assert.Error(t, err)
}
