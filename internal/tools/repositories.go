package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
)

func registerRepositoryTools(s toolAdder, t *toolset) {
	t.add(s, mcp.NewTool("repo_list_repos_by_project",
		mcp.WithDescription("List the Git repositories of a project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
	), t.listRepositories)

	t.add(s, mcp.NewTool("repo_list_pull_requests_by_repo",
		mcp.WithDescription("List pull requests of a repository."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name or ID.")),
		mcp.WithString("repositoryId", mcp.Required(), mcp.Description("Repository name or ID.")),
		mcp.WithString("status",
			mcp.Description("Pull request status filter."),
			mcp.Enum("active", "abandoned", "completed", "all"),
		),
		mcp.WithNumber("top", mcp.Description("Maximum number of pull requests to return (default 100).")),
	), t.listPullRequests)
}

func (t *toolset) listRepositories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := t.gitClient(ctx)
	if err != nil {
		return nil, err
	}
	repos, err := client.GetRepositories(ctx, git.GetRepositoriesArgs{Project: &project})
	if err != nil {
		return nil, err
	}
	return jsonResult(repos)
}

func (t *toolset) listPullRequests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := projectArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := req.RequireString("repositoryId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := t.gitClient(ctx)
	if err != nil {
		return nil, err
	}

	status := git.PullRequestStatus(req.GetString("status", string(git.PullRequestStatusValues.Active)))
	top := topArg(req, 100, 1000)
	prs, err := client.GetPullRequests(ctx, git.GetPullRequestsArgs{
		Project:        &project,
		RepositoryId:   &repo,
		SearchCriteria: &git.GitPullRequestSearchCriteria{Status: &status},
		Top:            &top,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(prs)
}

func (t *toolset) gitClient(ctx context.Context) (git.Client, error) {
	conn, err := t.clients(ctx)
	if err != nil {
		return nil, err
	}
	return git.NewClient(ctx, conn)
}
