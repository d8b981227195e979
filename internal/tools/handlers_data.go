package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"apsmcp/internal/summarize"
	"apsmcp/internal/validation"
)

func (p *Provider) handleListHubs(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := p.getDocument(ctx, "/project/v1/hubs", nil)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summarize.Hubs(doc)), nil
}

func (p *Provider) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hubID := request.GetString("hub_id", "")
	if err := validation.HubID(hubID); err != nil {
		return errorResult(err), nil
	}

	doc, err := p.getDocument(ctx, fmt.Sprintf("/project/v1/hubs/%s/projects", url.PathEscape(hubID)), nil)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summarize.Projects(doc)), nil
}

func (p *Provider) handleGetTopFolders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hubID := request.GetString("hub_id", "")
	projectID := request.GetString("project_id", "")
	if err := validation.HubID(hubID); err != nil {
		return errorResult(err), nil
	}
	if err := validation.ProjectID(projectID); err != nil {
		return errorResult(err), nil
	}

	path := fmt.Sprintf("/project/v1/hubs/%s/projects/%s/topFolders", url.PathEscape(hubID), url.PathEscape(projectID))
	doc, err := p.getDocument(ctx, path, nil)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summarize.Folders(doc)), nil
}

func (p *Provider) handleGetFolderContents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := request.GetString("project_id", "")
	folderID := request.GetString("folder_id", "")
	if err := validation.ProjectID(projectID); err != nil {
		return errorResult(err), nil
	}
	if err := validation.FolderID(folderID); err != nil {
		return errorResult(err), nil
	}

	doc, err := p.getDocument(ctx, folderContentsPath(projectID, folderID), p.pageQuery(request.GetInt("limit", 0)))
	if err != nil {
		return errorResult(err), nil
	}

	contents := summarize.Contents(doc, summarize.ContentsOptions{
		FilterExtensions: stringList(request, "filter_extensions"),
	})
	return jsonResult(contents), nil
}

func (p *Provider) handleGetFolderTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := request.GetString("project_id", "")
	folderID := request.GetString("folder_id", "")
	if err := validation.ProjectID(projectID); err != nil {
		return errorResult(err), nil
	}
	if err := validation.FolderID(folderID); err != nil {
		return errorResult(err), nil
	}

	depth := summarize.ClampDepth(request.GetInt("max_depth", p.opts.TreeMaxDepth))
	builder := summarize.NewTreeBuilder(summarize.FolderFetcherFunc(p.fetchFolder), p.opts.TreeConcurrency)

	tree, err := builder.Build(ctx, projectID, folderID, "", depth)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"max_depth": depth, "tree": tree}), nil
}

func (p *Provider) fetchFolder(ctx context.Context, projectID, folderID string) (*summarize.Document, error) {
	return p.getDocument(ctx, folderContentsPath(projectID, folderID), p.pageQuery(0))
}

func (p *Provider) handleGetItemVersions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := request.GetString("project_id", "")
	itemID := request.GetString("item_id", "")
	if err := validation.ProjectID(projectID); err != nil {
		return errorResult(err), nil
	}
	if err := validation.ItemID(itemID); err != nil {
		return errorResult(err), nil
	}

	base := fmt.Sprintf("/data/v1/projects/%s/items/%s", url.PathEscape(projectID), url.PathEscape(itemID))

	var itemDoc, versionsDoc *summarize.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		itemDoc, err = p.getDocument(gctx, base, nil)
		return err
	})
	g.Go(func() error {
		var err error
		versionsDoc, err = p.getDocument(gctx, base+"/versions", nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return errorResult(err), nil
	}

	return jsonResult(ItemVersions{
		Item:     summarize.Item(itemDoc),
		Versions: summarize.Versions(versionsDoc),
	}), nil
}

func folderContentsPath(projectID, folderID string) string {
	return fmt.Sprintf("/data/v1/projects/%s/folders/%s/contents", url.PathEscape(projectID), url.PathEscape(folderID))
}

// pageQuery returns the page[limit] query for folder listings. A
// non-positive limit falls back to the configured page size.
func (p *Provider) pageQuery(limit int) map[string]any {
	if limit <= 0 {
		limit = p.opts.PageLimit
	}
	if limit <= 0 {
		return nil
	}
	return map[string]any{"page[limit]": limit}
}

// stringList reads key as a list of strings, also accepting a single comma
// separated string.
func stringList(request mcp.CallToolRequest, key string) []string {
	switch v := request.GetArguments()[key].(type) {
	case string:
		return normalizeExtensions([]string{v})
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return normalizeExtensions(values)
	case []string:
		return normalizeExtensions(v)
	}
	return nil
}
