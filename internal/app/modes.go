package app

import (
	"context"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"azdo-mcp/internal/auth"
	"azdo-mcp/internal/compose"
	"azdo-mcp/internal/config"
	"azdo-mcp/internal/host"
	"azdo-mcp/internal/server"
	"azdo-mcp/pkg/logging"
)

// stdioConfig resolves the stdio composition config from flags, then
// config.yaml defaults, then the environment-derived default strategy.
func (a *Application) stdioConfig() (compose.Config, error) {
	defaults := a.settings.Defaults
	cfg := compose.Config{
		Topology:       compose.Stdio,
		Organization:   firstNonEmpty(a.config.Organization, defaults.Organization),
		TenantOverride: firstNonEmpty(a.config.Tenant, defaults.Tenant),
		Domains:        a.config.Domains,
		PAT:            os.Getenv(config.EnvPAT),
		Version:        a.config.Version,
	}
	if len(cfg.Domains) == 0 {
		cfg.Domains = defaults.Domains
	}

	strategy, err := auth.ParseStrategy(firstNonEmpty(a.config.Authentication, defaults.Authentication, config.DefaultAuthentication()))
	if err != nil {
		return compose.Config{}, config.NewConfigurationError(config.SourceFlags, "authentication", config.ErrorTypeInvalid, err.Error())
	}
	cfg.Strategy = strategy
	return cfg, nil
}

// runStdio serves one composition over the process streams.
func (a *Application) runStdio(ctx context.Context) error {
	cfg, err := a.stdioConfig()
	if err != nil {
		return err
	}
	comp, err := compose.Compose(ctx, cfg, compose.WithTenantResolver(a.resolver))
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if a.config.Stdin != nil {
		in = a.config.Stdin
	}
	var out io.Writer = os.Stdout
	if a.config.Stdout != nil {
		out = a.config.Stdout
	}
	return host.ServeStdio(ctx, comp, in, out)
}

// statelessSession reads the bridge configuration from the environment.
// The organization flag or config.yaml default fills a missing
// AZURE_DEVOPS_ORG.
func (a *Application) statelessSession() (config.SessionConfig, error) {
	sc := config.SessionFromEnv()
	if sc.Organization == "" {
		sc.Organization = firstNonEmpty(a.config.Organization, a.settings.Defaults.Organization)
	}
	if len(sc.Domains) == 0 {
		sc.Domains = a.settings.Defaults.Domains
	}
	sc.Normalize(a.settings.HTTP.PATOnly)
	if err := sc.Validate(); err != nil {
		return config.SessionConfig{}, err
	}
	return sc, nil
}

// runStateless serves one shared composition over streamable HTTP.
func (a *Application) runStateless(ctx context.Context) error {
	sc, err := a.statelessSession()
	if err != nil {
		return err
	}
	comp, err := compose.Compose(ctx, host.ComposeConfig(compose.StatelessHTTP, sc, a.config.Version),
		compose.WithTenantResolver(a.resolver))
	if err != nil {
		return err
	}

	httpCfg := a.settings.HTTP
	srv := server.NewHTTPServer(httpCfg.Address(), httpCfg.Endpoint, host.NewStatelessHandler(comp, httpCfg.Endpoint))
	return srv.Run(ctx)
}

// runStateful composes a server per HTTP session.
func (a *Application) runStateful(ctx context.Context) error {
	httpCfg := a.settings.HTTP
	factory := host.NewSessionFactory(a.composeSession, httpCfg.Endpoint,
		host.WithSessionTTL(httpCfg.SessionTTL),
		host.WithMaxSessions(httpCfg.MaxSessions),
		host.WithPATOnly(httpCfg.PATOnly),
	)
	srv := server.NewHTTPServer(httpCfg.Address(), httpCfg.Endpoint, factory)

	logging.Info("App", "Serving per-session compositions (ttl=%s, max=%d, patOnly=%t)",
		httpCfg.SessionTTL, httpCfg.MaxSessions, httpCfg.PATOnly)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return factory.Run(gctx) })
	return g.Wait()
}

func (a *Application) composeSession(ctx context.Context, sc config.SessionConfig) (*compose.Composition, error) {
	return compose.Compose(ctx, host.ComposeConfig(compose.StatefulHTTP, sc, a.config.Version),
		compose.WithTenantResolver(a.resolver))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
