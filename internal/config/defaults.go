package config

import (
	"net"
	"strconv"
	"time"
)

const (
	// DefaultHost is the HTTP bind address.
	DefaultHost = "localhost"

	// DefaultPort is the HTTP port.
	DefaultPort = 8080

	// DefaultEndpoint is the path of the MCP endpoint.
	DefaultEndpoint = "/mcp"

	// DefaultSessionTTL is the idle timeout of a stateful HTTP session.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultMaxSessions caps concurrent stateful HTTP sessions.
	DefaultMaxSessions = 100

	// DefaultTenantCacheTTL is how long a cached tenant lookup stays fresh.
	DefaultTenantCacheTTL = 7 * 24 * time.Hour
)

// DefaultDomains enables the whole catalog.
var DefaultDomains = []string{"all"}

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Domains: append([]string(nil), DefaultDomains...),
		},
		HTTP: HTTPConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			Endpoint:    DefaultEndpoint,
			SessionTTL:  DefaultSessionTTL,
			MaxSessions: DefaultMaxSessions,
		},
		TenantCache: TenantCacheConfig{
			TTL: DefaultTenantCacheTTL,
		},
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
