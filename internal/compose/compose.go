// Package compose builds one fully wired MCP server: domain set, tenant,
// authenticator, user-agent composer, server and registered tools.
//
// Every topology (stdio, stateless HTTP, stateful HTTP) calls Compose and
// only differs in where the Config comes from and how the resulting server
// is attached to a transport.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"azdo-mcp/internal/auth"
	"azdo-mcp/internal/config"
	"azdo-mcp/internal/domains"
	"azdo-mcp/internal/metrics"
	"azdo-mcp/internal/platform"
	"azdo-mcp/internal/tenant"
	"azdo-mcp/internal/tools"
	"azdo-mcp/internal/useragent"
	"azdo-mcp/pkg/logging"
)

// ServerName is announced to MCP clients during the handshake.
const ServerName = "Azure DevOps MCP Server"

// Topology is the hosting model a composition is built for.
type Topology string

const (
	Stdio         Topology = "stdio"
	StatelessHTTP Topology = "stateless-http"
	StatefulHTTP  Topology = "stateful-http"
)

// Config is everything Compose needs from the topology's configuration
// source.
type Config struct {
	Topology       Topology
	Organization   string
	Strategy       auth.Strategy
	TenantOverride string
	PAT            string
	Domains        []string
	Version        string
}

// TenantResolver looks up the directory tenant of an organization.
type TenantResolver interface {
	Resolve(ctx context.Context, org string) (string, error)
}

// AuthenticatorFunc builds the token provider for a strategy and tenant.
type AuthenticatorFunc func(strategy auth.Strategy, tenantID string) auth.TokenProvider

// Registrar registers tools on a composed server.
type Registrar func(s *server.MCPServer, tokens auth.TokenProvider, clients platform.ClientFactory, userAgent func() string, enabled domains.Set, org string)

type options struct {
	resolver      TenantResolver
	authenticator AuthenticatorFunc
	registrar     Registrar
	serverOpts    []server.ServerOption
}

// Option customizes Compose.
type Option func(*options)

// WithTenantResolver replaces the network tenant lookup.
func WithTenantResolver(r TenantResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithAuthenticator replaces auth.New.
func WithAuthenticator(f AuthenticatorFunc) Option {
	return func(o *options) { o.authenticator = f }
}

// WithRegistrar replaces tools.ConfigureAll.
func WithRegistrar(r Registrar) Option {
	return func(o *options) { o.registrar = r }
}

// WithServerOptions adds mcp-go server options.
func WithServerOptions(opts ...server.ServerOption) Option {
	return func(o *options) { o.serverOpts = append(o.serverOpts, opts...) }
}

// Composition is the result of one bootstrap run. Compositions share no
// mutable state.
type Composition struct {
	Server    *server.MCPServer
	UserAgent *useragent.Composer
	Domains   domains.Set
	TenantID  string
	Tokens    auth.TokenProvider
	Config    Config
}

// Compose runs the bootstrap sequence. Configuration errors and failures
// while constructing the server or registering tools are returned; a failed
// tenant lookup only logs a warning.
func Compose(ctx context.Context, cfg Config, opts ...Option) (*Composition, error) {
	o := options{registrar: tools.ConfigureAll}
	for _, opt := range opts {
		opt(&o)
	}

	cfg.Organization = strings.TrimSpace(cfg.Organization)
	strategy, err := validate(cfg)
	if err != nil {
		return nil, err
	}
	cfg.Strategy = strategy

	mgr, err := domains.NewManager(cfg.Domains...)
	if err != nil {
		return nil, fmt.Errorf("configuring domains: %w", err)
	}
	enabled := mgr.EnabledDomains()

	tenantID := resolveTenant(ctx, cfg, o.resolver)

	var tokens auth.TokenProvider
	if o.authenticator != nil {
		tokens = o.authenticator(cfg.Strategy, tenantID)
	} else {
		tokens = auth.New(cfg.Strategy, tenantID, auth.WithPAT(cfg.PAT))
	}

	ua := useragent.New(cfg.Version)
	s, err := construct(cfg, o, ua, tokens, enabled)
	if err != nil {
		return nil, err
	}

	metrics.Compositions.WithLabelValues(string(cfg.Topology)).Inc()
	logging.Info("Compose", "Composed %s server for %s (authentication=%s, domains=%s)",
		cfg.Topology, cfg.Organization, cfg.Strategy, enabled)

	return &Composition{
		Server:    s,
		UserAgent: ua,
		Domains:   enabled,
		TenantID:  tenantID,
		Tokens:    tokens,
		Config:    cfg,
	}, nil
}

// validate checks the config and returns the normalized strategy.
func validate(cfg Config) (auth.Strategy, error) {
	var errs config.ConfigurationErrorCollection
	if cfg.Organization == "" {
		errs.Add(config.NewConfigurationError(string(cfg.Topology), "organization", config.ErrorTypeMissing,
			"an Azure DevOps organization is required"))
	}
	strategy, err := auth.ParseStrategy(string(cfg.Strategy))
	if err != nil {
		errs.Add(config.NewConfigurationError(string(cfg.Topology), "authentication", config.ErrorTypeInvalid, err.Error()))
	}
	return strategy, errs.ErrorOrNil()
}

// resolveTenant returns the organization's tenant, falling back to the
// override when the lookup fails or finds none. PAT skips the lookup.
func resolveTenant(ctx context.Context, cfg Config, resolver TenantResolver) string {
	if cfg.Strategy == auth.PAT {
		return cfg.TenantOverride
	}
	if resolver == nil {
		resolver = tenant.NewResolver()
	}

	id, err := resolver.Resolve(ctx, cfg.Organization)
	if err != nil {
		logging.Warn("Compose", "Could not resolve tenant for organization %s: %v", cfg.Organization, err)
		return cfg.TenantOverride
	}
	if id == "" {
		return cfg.TenantOverride
	}
	if cfg.TenantOverride != "" && !strings.EqualFold(id, cfg.TenantOverride) {
		logging.Info("Compose", "Organization %s belongs to tenant %s; ignoring --tenant %s", cfg.Organization, id, cfg.TenantOverride)
	}
	return id
}

// construct builds the server and registers tools. A panic in either step
// is returned as an error.
func construct(cfg Config, o options, ua *useragent.Composer, tokens auth.TokenProvider, enabled domains.Set) (s *server.MCPServer, err error) {
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("constructing server: %v", r)
		}
	}()

	hooks := &server.Hooks{}
	// Client info is only carried by the initialize request; stateless HTTP
	// sessions do not keep it until notifications/initialized arrives. Tool
	// calls are only accepted after initialize, so this runs before any of them.
	hooks.AddAfterInitialize(func(_ context.Context, _ any, msg *mcp.InitializeRequest, _ *mcp.InitializeResult) {
		ua.AppendClientInfo(&msg.Params.ClientInfo)
		logging.Debug("Compose", "Client connected, user agent is now %q", ua.UserAgent())
	})

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(hooks),
		server.WithInstructions(instructions(cfg.Organization, enabled)),
	}
	serverOpts = append(serverOpts, o.serverOpts...)
	s = server.NewMCPServer(ServerName, cfg.Version, serverOpts...)

	clients := platform.NewClientFactory(platform.OrganizationURL(cfg.Organization), cfg.Strategy, tokens, ua.UserAgent)
	o.registrar(s, tokens, clients, ua.UserAgent, enabled, cfg.Organization)
	return s, nil
}

func instructions(org string, enabled domains.Set) string {
	return fmt.Sprintf("Tools in this server operate on the Azure DevOps organization %q. Enabled domains: %s.", org, enabled)
}
