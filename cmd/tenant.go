package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"azdo-mcp/internal/app"
	"azdo-mcp/internal/formatting"
)

var tenantOutput string

type tenantInfo struct {
	Organization string `json:"organization" yaml:"organization"`
	Tenant       string `json:"tenant" yaml:"tenant"`
}

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant <organization>",
		Short: "Resolve the Azure tenant of an organization",
		Long: `Looks up the Microsoft Entra tenant that owns an Azure DevOps organization.
Results are cached in the tenant cache configured in config.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: runTenant,
	}
	cmd.Flags().StringVarP(&tenantOutput, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func runTenant(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(tenantOutput)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(newAppConfig(app.ModeStdio))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	org := args[0]
	id, err := application.TenantResolver().Resolve(ctx, org)
	if err != nil {
		return fmt.Errorf("resolving tenant of %s: %w", org, err)
	}
	if id == "" {
		return fmt.Errorf("organization %s is not backed by an Azure tenant", org)
	}

	info := tenantInfo{Organization: org, Tenant: id}
	return formatting.Render(cmd.OutOrStdout(), formatting.Options{Format: format}, formatting.Table{
		Header: []string{"Organization", "Tenant"},
		Rows:   [][]string{{info.Organization, info.Tenant}},
		Data:   info,
	})
}

func init() {
	rootCmd.AddCommand(newTenantCmd())
}
