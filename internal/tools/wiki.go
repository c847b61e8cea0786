package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/wiki"
)

func registerWikiTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("wiki_list_wikis",
		mcp.WithDescription("List wikis in the organization, optionally limited to one project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Description("Project name or ID.")),
	), t.listWikis)
}

func (t *toolset) listWikis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	client, err := wiki.NewClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	args := wiki.GetAllWikisArgs{}
	if project := req.GetString("project", ""); project != "" {
		args.Project = &project
	}
	wikis, err := client.GetAllWikis(ctx, args)
	if err != nil {
		return nil, err
	}
	return jsonResult(wikis)
}
