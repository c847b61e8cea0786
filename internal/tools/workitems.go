package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/work"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
)

const myWorkItemsQuery = `SELECT [System.Id] FROM WorkItems
WHERE [System.TeamProject] = @project AND [System.AssignedTo] = @me%s
ORDER BY [System.ChangedDate] DESC`

func registerWorkItemTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("wit_get_work_item",
		mcp.WithDescription("Get a single work item by ID."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Work item ID.")),
		mcp.WithString("project", mcp.Description("Project name or ID.")),
		mcp.WithBoolean("expandRelations", mcp.Description("Include relations and links.")),
	), t.getWorkItem)

	t.add(s, mcp.NewTool("wit_my_work_items",
		mcp.WithDescription("List work items assigned to the authenticated user in a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithBoolean("includeCompleted", mcp.Description("Include closed and removed work items.")),
		mcp.WithNumber("top", mcp.Description("Maximum number of work items to return (default 50).")),
	), t.myWorkItems)
}

func registerWorkTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("work_list_team_iterations",
		mcp.WithDescription("List the iterations assigned to a team."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithString("team", mcp.Required(), mcp.Description("Team name or ID.")),
		mcp.WithString("timeframe", mcp.Description("Set to \"current\" to return only the current iteration.")),
	), t.listTeamIterations)
}

func (t *toolset) witClient(ctx context.Context) (workitemtracking.Client, error) {
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	return workitemtracking.NewClient(ctx, conn)
}

func (t *toolset) getWorkItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := t.witClient(ctx)
	if err != nil {
		return nil, err
	}

	args := workitemtracking.GetWorkItemArgs{Id: &id}
	if project := req.GetString("project", ""); project != "" {
		args.Project = &project
	}
	if req.GetBool("expandRelations", false) {
		expand := workitemtracking.WorkItemExpandValues.Relations
		args.Expand = &expand
	}
	item, err := client.GetWorkItem(ctx, args)
	if err != nil {
		return nil, err
	}
	return jsonResult(item)
}

func (t *toolset) myWorkItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := t.witClient(ctx)
	if err != nil {
		return nil, err
	}

	stateFilter := " AND [System.State] NOT IN ('Closed', 'Done', 'Removed')"
	if req.GetBool("includeCompleted", false) {
		stateFilter = ""
	}
	query := fmt.Sprintf(myWorkItemsQuery, stateFilter)
	top := topArg(req, 50, 200)
	result, err := client.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: &project,
		Top:     &top,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(result.WorkItems)
}

func (t *toolset) listTeamIterations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	team, err := req.RequireString("team")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	client, err := work.NewClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	args := work.GetTeamIterationsArgs{Project: &project, Team: &team}
	if tf := req.GetString("timeframe", ""); tf != "" {
		args.Timeframe = &tf
	}
	iterations, err := client.GetTeamIterations(ctx, args)
	if err != nil {
		return nil, err
	}
	return jsonResult(iterations)
}
