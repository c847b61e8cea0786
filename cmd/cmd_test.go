package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azdo-mcp/internal/app"
	"azdo-mcp/internal/config"
	"azdo-mcp/internal/domains"
)

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "azdo-mcp [organization]", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	assert.Error(t, rootCmd.Args(rootCmd, []string{"acme", "extra"}))
	assert.NoError(t, rootCmd.Args(rootCmd, []string{"acme"}))
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"serve", "domains", "tenant", "version", "self-update"} {
		assert.True(t, found[name], "subcommand %s is registered", name)
	}
}

func TestRootFlags(t *testing.T) {
	tests := []struct {
		flag      string
		shorthand string
		def       string
	}{
		{flag: "domains", shorthand: "d", def: "[all]"},
		{flag: "authentication", shorthand: "a", def: ""},
		{flag: "tenant", shorthand: "t", def: ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := rootCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-path"))

	level := rootCmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, level)
	assert.Equal(t, "info", level.DefValue)
}

func TestNewRootConfig(t *testing.T) {
	t.Setenv(config.EnvTransport, "")
	t.Setenv(config.EnvSmitheryMode, "")

	cmd := &cobra.Command{}
	var doms []string
	cmd.Flags().StringArrayVarP(&doms, "domains", "d", []string{"all"}, "")
	rootDomains = nil
	rootAuthentication = "azcli"
	rootTenant = "T1"
	logLevel = "warn"
	defer func() { rootAuthentication, rootTenant, logLevel = "", "", "info" }()

	cfg := newRootConfig(cmd, []string{"acme"})
	assert.Equal(t, app.ModeStdio, cfg.Mode)
	assert.Equal(t, "acme", cfg.Organization)
	assert.Equal(t, "azcli", cfg.Authentication)
	assert.Equal(t, "T1", cfg.Tenant)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Nil(t, cfg.Domains, "unchanged --domains leaves the config default in charge")

	require.NoError(t, cmd.Flags().Set("domains", "core"))
	rootDomains = doms
	cfg = newRootConfig(cmd, nil)
	assert.Equal(t, []string{"core"}, cfg.Domains)
	assert.Empty(t, cfg.Organization)

	t.Setenv(config.EnvTransport, "http")
	assert.Equal(t, app.ModeStateless, newRootConfig(cmd, nil).Mode)
}

func TestNewServeConfig(t *testing.T) {
	defer func() {
		serveStateless, servePATOnly = false, false
		servePort, serveSessionTTL = 0, 0
	}()

	cfg := newServeConfig()
	assert.Equal(t, app.ModeStateful, cfg.Mode)

	serveStateless = true
	servePATOnly = true
	servePort = 9000
	serveSessionTTL = time.Minute
	cfg = newServeConfig()
	assert.Equal(t, app.ModeStateless, cfg.Mode)
	assert.True(t, cfg.PATOnly)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, time.Minute, cfg.SessionTTL)
}

func TestVersionCommand(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)
	SetVersion("1.2.3-test")

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "azdo-mcp version 1.2.3-test\n", buf.String())
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{Use: "test", Version: "1.0.0"}
	testCmd.SetVersionTemplate(`{{printf "azdo-mcp version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "azdo-mcp version 1.0.0\n", buf.String())
}

func TestSelfUpdate_RefusesDevelopmentVersions(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	for _, v := range []string{"", "dev"} {
		SetVersion(v)
		err := runSelfUpdate(newSelfUpdateCmd(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot self-update a development version")
	}
}

func TestDomainCatalog(t *testing.T) {
	catalog := domainCatalog()
	require.Len(t, catalog, len(domains.Catalog()))

	total := 0
	for _, info := range catalog {
		assert.NotEmpty(t, info.Description, info.Name)
		assert.NotEmpty(t, info.Tools, info.Name)
		total += len(info.Tools)
	}
	assert.Equal(t, 15, total)
}

func TestDomainsCommand(t *testing.T) {
	defer func() { domainsOutput = "table" }()

	tests := []struct {
		output string
		check  func(t *testing.T, out string)
	}{
		{
			output: "table",
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "wiki_list_wikis")
				assert.Contains(t, out, "advsec")
			},
		},
		{
			output: "json",
			check: func(t *testing.T, out string) {
				var got []domainInfo
				require.NoError(t, json.Unmarshal([]byte(out), &got))
				assert.Len(t, got, len(domains.Catalog()))
			},
		},
		{
			output: "yaml",
			check: func(t *testing.T, out string) {
				assert.True(t, strings.Contains(out, "- name: "), out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			domainsOutput = tt.output
			c := newDomainsCmd()
			var buf bytes.Buffer
			c.SetOut(&buf)
			require.NoError(t, runDomains(c, nil))
			tt.check(t, buf.String())
		})
	}

	domainsOutput = "xml"
	assert.Error(t, runDomains(newDomainsCmd(), nil))
}

func TestTenantCommandArgs(t *testing.T) {
	c := newTenantCmd()
	assert.Error(t, c.Args(c, nil))
	assert.NoError(t, c.Args(c, []string{"acme"}))
}
