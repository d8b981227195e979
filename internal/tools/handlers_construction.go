package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"apsmcp/internal/summarize"
	"apsmcp/internal/validation"
)

func (p *Provider) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := validation.ConstructionProjectID(request.GetString("project_id", ""))
	if err != nil {
		return errorResult(err), nil
	}

	query := offsetQuery(request)
	if status := request.GetString("status", ""); status != "" {
		query["filter[status]"] = status
	}

	res, err := p.get(ctx, fmt.Sprintf("/construction/issues/v1/projects/%s/issues", url.PathEscape(projectID)), query)
	if err != nil {
		return errorResult(err), nil
	}

	body, err := res.JSONBody()
	if err != nil {
		return errorResult(err), nil
	}

	issues, err := summarize.Issues(body)
	if err != nil {
		return errorf("Unexpected issues response: %v", err), nil
	}
	return jsonResult(issues), nil
}

func (p *Provider) handleListSubmittals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := validation.ConstructionProjectID(request.GetString("project_id", ""))
	if err != nil {
		return errorResult(err), nil
	}

	res, err := p.get(ctx, fmt.Sprintf("/construction/submittals/v2/projects/%s/items", url.PathEscape(projectID)), offsetQuery(request))
	if err != nil {
		return errorResult(err), nil
	}

	body, err := res.JSONBody()
	if err != nil {
		return errorResult(err), nil
	}

	submittals, err := summarize.Submittals(body)
	if err != nil {
		return errorf("Unexpected submittals response: %v", err), nil
	}
	return jsonResult(submittals), nil
}

func offsetQuery(request mcp.CallToolRequest) map[string]any {
	query := map[string]any{}
	if limit := request.GetInt("limit", 0); limit > 0 {
		query["limit"] = limit
	}
	if offset := request.GetInt("offset", 0); offset > 0 {
		query["offset"] = offset
	}
	return query
}
