package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tools in this file call host-specific services that have no typed SDK
// client.

const (
	releaseAPIVersion  = "7.1"
	testPlanAPIVersion = "7.1"
	searchAPIVersion   = "7.1"
	advsecAPIVersion   = "7.2-preview.1"
)

// listResponse is the collection envelope of the REST API.
type listResponse struct {
	Count int               `json:"count"`
	Value []json.RawMessage `json:"value"`
}

func registerReleaseTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("release_get_releases",
		mcp.WithDescription("List classic releases of a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithNumber("definitionId", mcp.Description("Only return releases of this release definition.")),
		mcp.WithNumber("top", mcp.Description("Maximum number of releases to return (default 50).")),
	), t.getReleases)
}

func registerTestPlanTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("testplan_list_test_plans",
		mcp.WithDescription("List test plans of a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithBoolean("filterActivePlans", mcp.Description("Only return active plans (default true).")),
	), t.listTestPlans)
}

func registerSearchTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("search_code",
		mcp.WithDescription("Search source code across the organization's repositories."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("searchText", mcp.Required(), mcp.Description("Text to search for.")),
		mcp.WithString("project", mcp.Description("Limit the search to one project.")),
		mcp.WithNumber("top", mcp.Description("Maximum number of results (default 25).")),
		mcp.WithNumber("skip", mcp.Description("Number of results to skip.")),
	), t.searchCode)
}

func registerAdvancedSecurityTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("advsec_get_alerts",
		mcp.WithDescription("List Advanced Security alerts of a repository."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithString("repository", mcp.Required(), mcp.Description("Repository name or ID.")),
		mcp.WithString("severity",
			mcp.Description("Only return alerts of this severity."),
			mcp.Enum("critical", "high", "medium", "low", "note", "warning", "error"),
		),
		mcp.WithString("state",
			mcp.Description("Only return alerts in this state."),
			mcp.Enum("active", "dismissed", "fixed"),
		),
		mcp.WithNumber("top", mcp.Description("Maximum number of alerts to return (default 100).")),
	), t.getAlerts)
}

func (t *toolset) getReleases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("$top", strconv.Itoa(topArg(req, 50, 500)))
	if id := req.GetInt("definitionId", 0); id > 0 {
		query.Set("definitionId", strconv.Itoa(id))
	}

	var out listResponse
	path := "/" + url.PathEscape(project) + "/_apis/release/releases"
	if err := t.sendJSON(ctx, http.MethodGet, t.serviceRoot(t.hosts.Release), path, query, releaseAPIVersion, nil, &out); err != nil {
		return nil, err
	}
	return jsonResult(out.Value)
}

func (t *toolset) listTestPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("filterActivePlans", strconv.FormatBool(req.GetBool("filterActivePlans", true)))

	var out listResponse
	path := "/" + url.PathEscape(project) + "/_apis/testplan/plans"
	if err := t.sendJSON(ctx, http.MethodGet, t.serviceRoot(t.hosts.Core), path, query, testPlanAPIVersion, nil, &out); err != nil {
		return nil, err
	}
	return jsonResult(out.Value)
}

type codeSearchRequest struct {
	SearchText    string              `json:"searchText"`
	Top           int                 `json:"$top"`
	Skip          int                 `json:"$skip"`
	Filters       map[string][]string `json:"filters,omitempty"`
	IncludeFacets bool                `json:"includeFacets"`
}

func (t *toolset) searchCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("searchText")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := codeSearchRequest{
		SearchText: text,
		Top:        topArg(req, 25, 1000),
		Skip:       req.GetInt("skip", 0),
	}
	if project := req.GetString("project", ""); project != "" {
		body.Filters = map[string][]string{"Project": {project}}
	}

	var out json.RawMessage
	if err := t.sendJSON(ctx, http.MethodPost, t.serviceRoot(t.hosts.Search), "/_apis/search/codesearchresults", nil, searchAPIVersion, body, &out); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (t *toolset) getAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := req.RequireString("repository")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("top", strconv.Itoa(topArg(req, 100, 1000)))
	if severity := req.GetString("severity", ""); severity != "" {
		query.Set("criteria.severities", severity)
	}
	if state := req.GetString("state", ""); state != "" {
		query.Set("criteria.states", state)
	}

	var out listResponse
	path := "/" + url.PathEscape(project) + "/_apis/alert/repositories/" + url.PathEscape(repo) + "/alerts"
	if err := t.sendJSON(ctx, http.MethodGet, t.serviceRoot(t.hosts.AdvancedSecurity), path, query, advsecAPIVersion, nil, &out); err != nil {
		return nil, err
	}
	return jsonResult(out.Value)
}
