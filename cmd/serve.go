package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"azdo-mcp/internal/app"
)

var (
	serveStateless   bool
	servePATOnly     bool
	serveHost        string
	servePort        int
	serveEndpoint    string
	serveSessionTTL  time.Duration
	serveMaxSessions int
)

// serveCmd hosts azdo-mcp over streamable HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over HTTP",
	Long: `Serves MCP over streamable HTTP. It can run in two modes:

1. Stateful (default):
   - Every client session supplies its own configuration as query
     parameters (organization, authentication, domains, pat, tenant) or
     as a base64 JSON "config" parameter.
   - Each session gets its own server and tool set. Idle sessions expire
     after --session-ttl.

2. Stateless (--stateless):
   - One server is composed at startup from AZURE_DEVOPS_ORG,
     AZURE_DEVOPS_AUTH (default pat), AZURE_DEVOPS_PAT, AZURE_DEVOPS_DOMAINS
     and AZURE_DEVOPS_TENANT. A .env file in the working directory is
     loaded first.

Besides the MCP endpoint the server exposes /health and /metrics.

Configuration:
  Defaults are read from config.yaml in ~/.config/azdo-mcp or --config-path.
  PORT and the flags below override it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func newServeConfig() *app.Config {
	mode := app.ModeStateful
	if serveStateless {
		mode = app.ModeStateless
	}
	cfg := newAppConfig(mode)
	cfg.Host = serveHost
	cfg.Port = servePort
	cfg.Endpoint = serveEndpoint
	cfg.SessionTTL = serveSessionTTL
	cfg.MaxSessions = serveMaxSessions
	cfg.PATOnly = servePATOnly
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	return runApplication(cmd, newServeConfig())
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveStateless, "stateless", false, "Serve one composition configured from the environment")
	serveCmd.Flags().BoolVar(&servePATOnly, "pat-only", false, "Force pat authentication for every session")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default localhost)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default 8080)")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "MCP endpoint path (default /mcp)")
	serveCmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", 0, "Drop sessions idle for longer than this (default 30m)")
	serveCmd.Flags().IntVar(&serveMaxSessions, "max-sessions", 0, "Maximum concurrent sessions (default 100)")
}
