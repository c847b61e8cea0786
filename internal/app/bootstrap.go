package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"azdo-mcp/internal/config"
	"azdo-mcp/internal/tenant"
	"azdo-mcp/pkg/logging"
)

// Application represents the main application structure that bootstraps and
// runs azdo-mcp in one of its hosting modes.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: initialize logging, load .env and config.yaml, apply
//     environment and flag overrides, build the tenant resolver
//  2. Execution phase: run the selected mode until the context ends
type Application struct {
	config   *Config
	settings config.Config
	resolver *tenant.Resolver
}

// NewApplication creates and initializes a new application instance.
//
// Logging always goes to stderr (or cfg.Stderr); stdout belongs to the stdio
// transport. Configuration is read from cfg.ConfigPath, or from
// ~/.config/azdo-mcp when no path is given, unless cfg.Settings is already
// populated.
func NewApplication(cfg *Config) (*Application, error) {
	var logOutput io.Writer = os.Stderr
	if cfg.Stderr != nil {
		logOutput = cfg.Stderr
	}
	logging.InitForCLI(cfg.logLevel(), logOutput)

	if err := config.LoadDotEnv(""); err != nil {
		logging.Error("Bootstrap", err, "Failed to load .env")
		return nil, err
	}

	if cfg.Settings == nil {
		settings, err := loadSettings(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Settings = &settings
	}
	settings := *cfg.Settings

	if err := config.ApplyEnv(&settings); err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, &settings)

	logging.Debug("Bootstrap", "Mode %s, HTTP address %s", cfg.Mode, settings.HTTP.Address())

	return &Application{
		config:   cfg,
		settings: settings,
		resolver: newTenantResolver(settings.TenantCache),
	}, nil
}

func loadSettings(configPath string) (config.Config, error) {
	if configPath == "" {
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
		configPath = path
	}

	settings, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return config.Config{}, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	return settings, nil
}

func applyFlagOverrides(cfg *Config, settings *config.Config) {
	if cfg.Host != "" {
		settings.HTTP.Host = cfg.Host
	}
	if cfg.Port != 0 {
		settings.HTTP.Port = cfg.Port
	}
	if cfg.Endpoint != "" {
		settings.HTTP.Endpoint = cfg.Endpoint
	}
	if cfg.SessionTTL != 0 {
		settings.HTTP.SessionTTL = cfg.SessionTTL
	}
	if cfg.MaxSessions != 0 {
		settings.HTTP.MaxSessions = cfg.MaxSessions
	}
	if cfg.PATOnly {
		settings.HTTP.PATOnly = true
	}
}

func newTenantResolver(tc config.TenantCacheConfig) *tenant.Resolver {
	opts := []tenant.Option{tenant.WithTTL(tc.TTL)}
	if !tc.Disabled {
		path := tc.Path
		if path == "" {
			if p, err := tenant.DefaultCachePath(); err == nil {
				path = p
			}
		}
		opts = append(opts, tenant.WithCache(tenant.NewCache(path)))
	}
	return tenant.NewResolver(opts...)
}

// Settings returns the effective configuration after all overrides.
func (a *Application) Settings() config.Config {
	return a.settings
}

// TenantResolver returns the resolver shared by every composition of this
// process.
func (a *Application) TenantResolver() *tenant.Resolver {
	return a.resolver
}

// Run executes the selected mode until ctx is cancelled or SIGINT/SIGTERM
// arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch a.config.Mode {
	case ModeStdio:
		return a.runStdio(ctx)
	case ModeStateless:
		return a.runStateless(ctx)
	case ModeStateful:
		return a.runStateful(ctx)
	default:
		return fmt.Errorf("unknown mode %d", a.config.Mode)
	}
}
