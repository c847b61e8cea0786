package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"azdo-mcp/internal/app"
	"azdo-mcp/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a startup or runtime error.
	ExitCodeError = 1
)

// Flags shared by every command that starts the application.
var (
	debug      bool
	logLevel   string
	configPath string
)

// Stdio flags of the root command.
var (
	rootDomains        []string
	rootAuthentication string
	rootTenant         string
)

// rootCmd serves one Azure DevOps organization over stdio. When the
// environment selects the HTTP bridge it serves the stateless HTTP
// topology instead.
var rootCmd = &cobra.Command{
	Use:   "azdo-mcp [organization]",
	Short: "Azure DevOps MCP server",
	Long: `azdo-mcp exposes an Azure DevOps organization to MCP clients.

Without a subcommand it speaks MCP over stdin/stdout, which is how editors
and agents launch local MCP servers. Tools are grouped in domains; use
--domains to limit what is registered and 'azdo-mcp domains' to list them.

When AZDO_MCP_TRANSPORT=http or SMITHERY_MODE is set, the root command
serves the stateless HTTP bridge configured from AZURE_DEVOPS_* variables.
Use 'azdo-mcp serve' for the stateful per-session HTTP server.`,
	Args: cobra.MaximumNArgs(1),
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "azdo-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func rootMode() app.Mode {
	if config.HTTPBridgeRequested() {
		return app.ModeStateless
	}
	return app.ModeStdio
}

// newRootConfig maps the root command's arguments and flags onto the
// application configuration.
func newRootConfig(cmd *cobra.Command, args []string) *app.Config {
	cfg := newAppConfig(rootMode())
	if len(args) > 0 {
		cfg.Organization = args[0]
	}
	if cmd.Flags().Changed("domains") {
		cfg.Domains = rootDomains
	}
	cfg.Authentication = rootAuthentication
	cfg.Tenant = rootTenant
	return cfg
}

// newAppConfig returns an application configuration carrying the shared
// flags.
func newAppConfig(mode app.Mode) *app.Config {
	cfg := app.NewConfig(mode, debug, configPath, GetVersion())
	cfg.LogLevel = logLevel
	return cfg
}

func runRoot(cmd *cobra.Command, args []string) error {
	return runApplication(cmd, newRootConfig(cmd, args))
}

// runApplication bootstraps the application and runs it until the command
// context ends.
func runApplication(cmd *cobra.Command, cfg *app.Config) error {
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	// RunE is bound here rather than in the literal to break the
	// rootCmd -> runRoot -> GetVersion -> rootCmd initialization cycle.
	rootCmd.RunE = runRoot

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default ~/.config/azdo-mcp)")

	rootCmd.Flags().StringArrayVarP(&rootDomains, "domains", "d", []string{"all"},
		"Domains to enable (repeatable or comma separated)")
	rootCmd.Flags().StringVarP(&rootAuthentication, "authentication", "a", "",
		"Authentication type: interactive, azcli, env or pat (default interactive, azcli in a Codespace)")
	rootCmd.Flags().StringVarP(&rootTenant, "tenant", "t", "", "Azure tenant ID used when the organization's tenant cannot be resolved")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
