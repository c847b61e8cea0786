package host

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"azdo-mcp/internal/auth"
	"azdo-mcp/internal/compose"
	"azdo-mcp/internal/config"
)

// NewStatelessHandler serves one composition over streamable HTTP without
// session tracking.
func NewStatelessHandler(comp *compose.Composition, endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(comp.Server,
		server.WithStateLess(true),
		server.WithEndpointPath(endpoint),
	)
}

// ComposeConfig converts a validated session configuration into a
// composition config.
func ComposeConfig(topology compose.Topology, sc config.SessionConfig, version string) compose.Config {
	return compose.Config{
		Topology:       topology,
		Organization:   sc.Organization,
		Strategy:       auth.Strategy(sc.Authentication),
		TenantOverride: sc.Tenant,
		PAT:            sc.PAT,
		Domains:        sc.Domains,
		Version:        version,
	}
}
