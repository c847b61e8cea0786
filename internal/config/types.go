package config

import "time"

// Config is the top-level configuration structure for azdo-mcp.
type Config struct {
	Defaults    DefaultsConfig    `yaml:"defaults"`
	HTTP        HTTPConfig        `yaml:"http"`
	TenantCache TenantCacheConfig `yaml:"tenantCache"`
}

// DefaultsConfig supplies values for flags the user did not set.
type DefaultsConfig struct {
	Organization   string   `yaml:"organization,omitempty"`
	Authentication string   `yaml:"authentication,omitempty"` // interactive, azcli, env or pat
	Domains        []string `yaml:"domains,omitempty"`
	Tenant         string   `yaml:"tenant,omitempty"`
}

// HTTPConfig configures the HTTP topologies.
type HTTPConfig struct {
	Host        string        `yaml:"host,omitempty"`
	Port        int           `yaml:"port,omitempty"`
	Endpoint    string        `yaml:"endpoint,omitempty"`
	SessionTTL  time.Duration `yaml:"sessionTTL,omitempty"`  // Idle time after which a stateful session is dropped
	MaxSessions int           `yaml:"maxSessions,omitempty"` // Upper bound on concurrent stateful sessions
	PATOnly     bool          `yaml:"patOnly,omitempty"`     // Force pat authentication for every session
}

// TenantCacheConfig configures the on-disk organization tenant cache.
type TenantCacheConfig struct {
	Path     string        `yaml:"path,omitempty"` // Defaults to org-tenants.yaml in the config directory
	TTL      time.Duration `yaml:"ttl,omitempty"`
	Disabled bool          `yaml:"disabled,omitempty"`
}

// Address returns host:port of the HTTP listener.
func (h HTTPConfig) Address() string {
	return joinHostPort(h.Host, h.Port)
}
