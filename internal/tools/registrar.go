// Package tools registers the Azure DevOps tools exposed over MCP.
//
// Tools are grouped by domain; ConfigureAll only registers the groups that
// the domain gate enabled.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"azdo-mcp/internal/auth"
	"azdo-mcp/internal/domains"
	"azdo-mcp/internal/metrics"
	"azdo-mcp/internal/platform"
	"azdo-mcp/pkg/logging"
	"azdo-mcp/pkg/strings"
)

// maxErrorLen bounds the error text returned to tool callers.
const maxErrorLen = 500

// Hosts are the service roots used by tools that talk to host-specific
// Azure DevOps services. Tests point them at a local server.
type Hosts struct {
	Release          string
	Search           string
	AdvancedSecurity string
	Core             string
}

// DefaultHosts are the Azure DevOps Services endpoints.
var DefaultHosts = Hosts{
	Release:          "https://vsrm.dev.azure.com",
	Search:           "https://almsearch.dev.azure.com",
	AdvancedSecurity: "https://advsec.dev.azure.com",
	Core:             platform.BaseURL,
}

// toolset carries what every handler needs.
type toolset struct {
	org       string
	tokens    auth.TokenProvider
	clients   platform.ClientFactory
	userAgent func() string
	hosts     Hosts
}

// toolAdder is the part of *server.MCPServer the register functions use.
type toolAdder interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

type registerFunc func(s toolAdder, t *toolset)

var domainTools = map[domains.Domain]registerFunc{
	domains.Core:             registerCoreTools,
	domains.Repositories:     registerRepositoryTools,
	domains.Builds:           registerBuildTools,
	domains.WorkItems:        registerWorkItemTools,
	domains.Work:             registerWorkTools,
	domains.Wiki:             registerWikiTools,
	domains.Releases:         registerReleaseTools,
	domains.TestPlans:        registerTestPlanTools,
	domains.Search:           registerSearchTools,
	domains.AdvancedSecurity: registerAdvancedSecurityTools,
}

// ConfigureAll registers the tools of every enabled domain on s.
func ConfigureAll(
	s *server.MCPServer,
	tokens auth.TokenProvider,
	clients platform.ClientFactory,
	userAgent func() string,
	enabled domains.Set,
	org string,
) {
	configure(s, &toolset{
		org:       org,
		tokens:    tokens,
		clients:   clients,
		userAgent: userAgent,
		hosts:     DefaultHosts,
	}, enabled)
}

func configure(s toolAdder, t *toolset, enabled domains.Set) {
	for _, d := range enabled.List() {
		register, ok := domainTools[d]
		if !ok {
			logging.Warn("Tools", "No tools are registered for domain %s", d)
			continue
		}
		register(s, t)
	}
}

// Catalog returns the tool definitions of every enabled domain, keyed by
// domain, without building a server.
func Catalog(enabled domains.Set) map[domains.Domain][]mcp.Tool {
	out := make(map[domains.Domain][]mcp.Tool, len(enabled))
	t := &toolset{userAgent: func() string { return "" }, hosts: DefaultHosts}
	for _, d := range enabled.List() {
		register, ok := domainTools[d]
		if !ok {
			continue
		}
		rec := &toolRecorder{}
		register(rec, t)
		out[d] = rec.tools
	}
	return out
}

type toolRecorder struct {
	tools []mcp.Tool
}

func (r *toolRecorder) AddTool(tool mcp.Tool, _ server.ToolHandlerFunc) {
	r.tools = append(r.tools, tool)
}

// add registers a tool with metrics and error conversion. Handler errors
// become tool errors so callers see authentication and API failures.
func (t *toolset) add(s toolAdder, tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.AddTool(tool, t.instrument(tool.Name, handler))
}

func (t *toolset) instrument(name string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logging.Debug("Tools", "Calling %s for %s as %s", name, t.org, t.userAgent())
		start := time.Now()
		result, err := handler(ctx, req)
		metrics.ToolCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.ToolCalls.WithLabelValues(name, metrics.OutcomeError).Inc()
			logging.Error("Tools", err, "Tool %s failed", name)
			msg := strings.Summarize(fmt.Sprintf("%s failed: %v", name, err), maxErrorLen)
			return mcp.NewToolResultError(msg), nil
		}
		if result != nil && result.IsError {
			metrics.ToolCalls.WithLabelValues(name, metrics.OutcomeError).Inc()
		} else {
			metrics.ToolCalls.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
		}
		return result, nil
	}
}

// jsonResult renders v as indented JSON text.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// projectArg returns the required "project" argument.
func projectArg(req mcp.CallToolRequest) (string, error) {
	return req.RequireString("project")
}

// topArg returns "top" clamped to [1, max].
func topArg(req mcp.CallToolRequest, def, max int) int {
	top := req.GetInt("top", def)
	if top < 1 {
		return def
	}
	if top > max {
		return max
	}
	return top
}
