// Package server hosts the HTTP surface of azdo-mcp.
//
// The router serves three kinds of endpoints:
//
//   - /health, a liveness probe returning {"status":"ok"}
//   - /metrics, the Prometheus registry of internal/metrics
//   - the MCP endpoint (default /mcp), backed by either the stateless bridge
//     or the stateful session factory from internal/host
//
// When the process runs under systemd, READY=1 is sent once the listener is
// bound and STOPPING=1 when shutdown begins.
package server
