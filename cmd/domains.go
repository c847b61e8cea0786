package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"azdo-mcp/internal/domains"
	"azdo-mcp/internal/formatting"
	"azdo-mcp/internal/tools"
)

var domainsOutput string

type domainInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tools       []string `json:"tools" yaml:"tools"`
}

func newDomainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List the tool domains",
		Long: `Lists every domain that --domains accepts together with the tools it
registers. "all" enables every domain.`,
		Args: cobra.NoArgs,
		RunE: runDomains,
	}
	cmd.Flags().StringVarP(&domainsOutput, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func domainCatalog() []domainInfo {
	all := make(domains.Set)
	for _, d := range domains.Catalog() {
		all[d] = struct{}{}
	}
	registered := tools.Catalog(all)

	out := make([]domainInfo, 0, len(all))
	for _, d := range all.List() {
		info := domainInfo{Name: string(d), Description: domains.Description(d)}
		for _, tool := range registered[d] {
			info.Tools = append(info.Tools, tool.Name)
		}
		out = append(out, info)
	}
	return out
}

func runDomains(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(domainsOutput)
	if err != nil {
		return err
	}

	catalog := domainCatalog()
	tbl := formatting.Table{
		Header: []string{"Domain", "Description", "Tools"},
		Data:   catalog,
	}
	for _, info := range catalog {
		tbl.Rows = append(tbl.Rows, []string{info.Name, info.Description, strings.Join(info.Tools, "\n")})
	}
	return formatting.Render(cmd.OutOrStdout(), formatting.Options{Format: format}, tbl)
}

func init() {
	rootCmd.AddCommand(newDomainsCmd())
}
