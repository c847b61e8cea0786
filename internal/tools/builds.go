package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
)

func registerBuildTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("build_get_builds",
		mcp.WithDescription("List recent builds of a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithNumber("definitionId", mcp.Description("Only return builds of this definition.")),
		mcp.WithString("branchName", mcp.Description("Only return builds of this branch, e.g. refs/heads/main.")),
		mcp.WithNumber("top", mcp.Description("Maximum number of builds to return (default 50).")),
	), t.getBuilds)

	t.add(s, mcp.NewTool("build_get_definitions",
		mcp.WithDescription("List the build definitions of a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithString("name", mcp.Description("Filter by definition name; supports wildcards.")),
		mcp.WithNumber("top", mcp.Description("Maximum number of definitions to return (default 100).")),
	), t.getBuildDefinitions)
}

func (t *toolset) getBuilds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := t.buildClient(ctx)
	if err != nil {
		return nil, err
	}

	top := topArg(req, 50, 500)
	args := build.GetBuildsArgs{Project: &project, Top: &top}
	if id := req.GetInt("definitionId", 0); id > 0 {
		args.Definitions = &[]int{id}
	}
	if branch := req.GetString("branchName", ""); branch != "" {
		args.BranchName = &branch
	}
	builds, err := client.GetBuilds(ctx, args)
	if err != nil {
		return nil, err
	}
	return jsonResult(builds.Value)
}

func (t *toolset) getBuildDefinitions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := t.buildClient(ctx)
	if err != nil {
		return nil, err
	}

	top := topArg(req, 100, 1000)
	args := build.GetDefinitionsArgs{Project: &project, Top: &top}
	if name := req.GetString("name", ""); name != "" {
		args.Name = &name
	}
	defs, err := client.GetDefinitions(ctx, args)
	if err != nil {
		return nil, err
	}
	return jsonResult(defs.Value)
}

func (t *toolset) buildClient(ctx context.Context) (build.Client, error) {
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	return build.NewClient(ctx, conn)
}
