package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
)

func registerCoreTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("core_list_projects",
		mcp.WithDescription("List the projects of the Azure DevOps organization."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("top", mcp.Description("Maximum number of projects to return (default 100).")),
		mcp.WithNumber("skip", mcp.Description("Number of projects to skip.")),
	), t.listProjects)

	t.add(s, mcp.NewTool("core_list_project_teams",
		mcp.WithDescription("List the teams of a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithBoolean("mine", mcp.Description("Only return teams the caller is a member of.")),
		mcp.WithNumber("top", mcp.Description("Maximum number of teams to return (default 100).")),
	), t.listProjectTeams)

	t.add(s, mcp.NewTool("core_check_authentication",
		mcp.WithDescription("Check that the server can obtain credentials for the organization."),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.checkAuthentication)
}

func (t *toolset) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	client, err := core.NewClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	top := topArg(req, 100, 1000)
	skip := req.GetInt("skip", 0)
	resp, err := client.GetProjects(ctx, core.GetProjectsArgs{Top: &top, Skip: &skip})
	if err != nil {
		return nil, err
	}
	return jsonResult(resp)
}

func (t *toolset) listProjectTeams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	client, err := core.NewClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	top := topArg(req, 100, 1000)
	mine := req.GetBool("mine", false)
	teams, err := client.GetTeams(ctx, core.GetTeamsArgs{ProjectId: &project, Mine: &mine, Top: &top})
	if err != nil {
		return nil, err
	}
	return jsonResult(teams)
}

func (t *toolset) checkAuthentication(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := t.tokens(ctx); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Credentials for organization %s are available.", t.org)), nil
}
