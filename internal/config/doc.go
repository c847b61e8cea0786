// Package config provides configuration management for azdo-mcp.
//
// Configuration comes from three layers, applied in order:
//
//   - built-in defaults (GetDefaultConfig)
//   - config.yaml in the configuration directory (~/.config/azdo-mcp or --config-path)
//   - environment variables, optionally seeded from a .env file
//
// HTTP-hosted sessions carry their own SessionConfig, decoded from the
// request that opens the session and validated before a server is composed
// for it.
//
// # Configuration File
//
//	defaults:
//	  organization: contoso
//	  authentication: azcli
//	  domains: [core, repositories]
//	http:
//	  host: localhost
//	  port: 8080
//	  endpoint: /mcp
//	  sessionTTL: 30m
//	  maxSessions: 100
//	tenantCache:
//	  ttl: 168h
//
// Errors found while loading are reported as ConfigurationError values that
// name the source and field at fault.
package config
