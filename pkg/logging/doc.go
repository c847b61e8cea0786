// Package logging provides the structured logging used across azdo-mcp.
//
// It is a thin layer over the standard slog package: every entry carries a
// subsystem attribute and messages use printf-style formatting.
//
// # Output
//
// The stdio topology speaks JSON-RPC on stdout, so all diagnostics go to
// stderr. InitForCLI takes the writer explicitly; the bootstrap always passes
// os.Stderr. Before InitForCLI is called, entries go to stderr at INFO level.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Bootstrap", "Organization: %s", org)
//	logging.Debug("Tenant", "cache hit for %s", org)
//	logging.Warn("Bootstrap", "Could not look up organization tenant: %v", err)
//	logging.Error("Tools", err, "tool %s failed", name)
//
// # Subsystems
//
//   - Bootstrap: composition of a server instance
//   - Auth: token acquisition
//   - Tenant: organization tenant lookup and cache
//   - Domains: domain gating
//   - Tools: tool registration and invocation
//   - Host: transport attachment (stdio, HTTP)
//   - Sessions: stateful HTTP session lifecycle
//
// StdLogger bridges to *log.Logger for libraries that require one.
package logging
