package tools

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"apsmcp/internal/apiclient"
	"apsmcp/internal/oauth"
	"apsmcp/internal/summarize"
	"apsmcp/pkg/logging"
)

const subsystem = "Tools"

// TokenSource returns a bearer token for the next API call.
type TokenSource interface {
	Token(ctx context.Context) (string, oauth.AuthMode, error)
}

// APIDoer forwards one request to the resource API.
type APIDoer interface {
	Do(ctx context.Context, req apiclient.Request, token string) (*apiclient.Result, error)
	CheckTarget(path string) error
}

// Authenticator drives the interactive user session.
type Authenticator interface {
	Login(ctx context.Context, opts oauth.LoginOptions) (string, error)
	Logout() error
	Status() oauth.SessionStatus
}

// Options tune the tool handlers.
type Options struct {
	// Credentials resolves the application credentials.
	Credentials oauth.CredentialsFunc
	// Scope is requested for both flows.
	Scope        string
	CallbackPort int
	// TreeMaxDepth is the folder tree depth used when the caller omits one.
	TreeMaxDepth int
	// PageLimit is sent as page[limit] on folder listings.
	PageLimit       int
	TreeConcurrency int
}

// Provider owns the tool definitions and their handlers. It is stateless
// beyond its collaborators and safe for concurrent tool calls.
type Provider struct {
	tokens TokenSource
	api    APIDoer
	auth   Authenticator
	opts   Options
}

// NewProvider creates a tool provider. auth may be nil, in which case the
// login and logout tools report that interactive login is unavailable.
func NewProvider(tokens TokenSource, api APIDoer, auth Authenticator, opts Options) *Provider {
	if opts.TreeMaxDepth == 0 {
		opts.TreeMaxDepth = summarize.DefaultTreeDepth
	}
	return &Provider{tokens: tokens, api: api, auth: auth, opts: opts}
}

type handlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Register adds every tool to s.
func (p *Provider) Register(s *server.MCPServer) {
	s.AddTools(p.Tools()...)
}

// Tools returns the tool definitions bound to their handlers.
func (p *Provider) Tools() []server.ServerTool {
	defs := []struct {
		tool    mcp.Tool
		handler handlerFunc
	}{
		{
			tool: mcp.NewTool(ToolAuthStatus,
				mcp.WithDescription("Report which authentication mode is active and whether a user session exists"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleAuthStatus,
		},
		{
			tool: mcp.NewTool(ToolLogin,
				mcp.WithDescription("Sign in as a user through the browser (authorization code flow). Needed for user-scoped data such as issues"),
				mcp.WithString("scope", mcp.Description("Space separated OAuth scopes (default: configured scope)")),
				mcp.WithOpenWorldHintAnnotation(true),
			),
			handler: p.handleLogin,
		},
		{
			tool: mcp.NewTool(ToolLogout,
				mcp.WithDescription("Forget the user session; later calls use the application token"),
				mcp.WithIdempotentHintAnnotation(true),
			),
			handler: p.handleLogout,
		},
		{
			tool: mcp.NewTool(ToolListHubs,
				mcp.WithDescription("List the hubs (accounts) the caller can access"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleListHubs,
		},
		{
			tool: mcp.NewTool(ToolListProjects,
				mcp.WithDescription("List the projects in a hub"),
				mcp.WithString("hub_id", mcp.Required(), mcp.Description(`Hub ID, e.g. "b.<account-guid>"`)),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleListProjects,
		},
		{
			tool: mcp.NewTool(ToolGetTopFolders,
				mcp.WithDescription("List the top level folders of a project"),
				mcp.WithString("hub_id", mcp.Required(), mcp.Description("Hub ID")),
				mcp.WithString("project_id", mcp.Required(), mcp.Description(`Project ID, e.g. "b.<project-guid>"`)),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleGetTopFolders,
		},
		{
			tool: mcp.NewTool(ToolGetFolderContents,
				mcp.WithDescription("List subfolders and files of a folder with size, version and file type counts"),
				mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
				mcp.WithString("folder_id", mcp.Required(), mcp.Description("Folder URN")),
				mcp.WithArray("filter_extensions",
					mcp.Description(`Only keep files with these extensions, e.g. ["rvt", "dwg"]`),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithNumber("limit", mcp.Description("Page size (page[limit])")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleGetFolderContents,
		},
		{
			tool: mcp.NewTool(ToolGetFolderTree,
				mcp.WithDescription("Walk a folder hierarchy and return a compact tree of folder names and file names"),
				mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
				mcp.WithString("folder_id", mcp.Required(), mcp.Description("Root folder URN")),
				mcp.WithNumber("max_depth", mcp.Description(fmt.Sprintf("Levels to expand, %d to %d", summarize.MinTreeDepth, summarize.MaxTreeDepth))),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleGetFolderTree,
		},
		{
			tool: mcp.NewTool(ToolGetItemVersions,
				mcp.WithDescription("Show a file item and its version history, newest first"),
				mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
				mcp.WithString("item_id", mcp.Required(), mcp.Description("Item (lineage) URN")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleGetItemVersions,
		},
		{
			tool: mcp.NewTool(ToolListIssues,
				mcp.WithDescription("List construction issues of a project with counts per status"),
				mcp.WithString("project_id", mcp.Required(), mcp.Description("Project GUID or b.-prefixed project ID")),
				mcp.WithString("status", mcp.Description("Filter by status, e.g. open, closed")),
				mcp.WithNumber("limit", mcp.Description("Maximum issues to return")),
				mcp.WithNumber("offset", mcp.Description("Pagination offset")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleListIssues,
		},
		{
			tool: mcp.NewTool(ToolListSubmittals,
				mcp.WithDescription("List submittal items of a project with counts per state"),
				mcp.WithString("project_id", mcp.Required(), mcp.Description("Project GUID or b.-prefixed project ID")),
				mcp.WithNumber("limit", mcp.Description("Maximum items to return")),
				mcp.WithNumber("offset", mcp.Description("Pagination offset")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handler: p.handleListSubmittals,
		},
		{
			tool: mcp.NewTool(ToolAPIRequest,
				mcp.WithDescription("Send an arbitrary request to the API host and return the raw JSON response"),
				mcp.WithString("method", mcp.Description("HTTP method"), mcp.Enum(allowedMethods...)),
				mcp.WithString("path", mcp.Required(), mcp.Description(`Path relative to the API host, e.g. "/project/v1/hubs"`)),
				mcp.WithObject("query", mcp.Description("Query parameters; array values are repeated")),
				mcp.WithObject("body", mcp.Description("JSON body for POST, PATCH and PUT")),
				mcp.WithObject("headers", mcp.Description("Extra request headers")),
				mcp.WithDestructiveHintAnnotation(true),
			),
			handler: p.handleAPIRequest,
		},
	}

	tools := make([]server.ServerTool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, server.ServerTool{
			Tool:    d.tool,
			Handler: recoverTool(d.tool.Name, d.handler),
		})
	}
	return tools
}

// recoverTool turns a panicking handler into an error result.
func recoverTool(name string, h handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.Error(subsystem, fmt.Errorf("panic: %v", r), "Tool %s panicked\n%s", name, debug.Stack())
				result = errorf("Internal error in %s: %v", name, r)
				err = nil
			}
		}()
		return h(ctx, request)
	}
}

// get performs an authenticated GET.
func (p *Provider) get(ctx context.Context, path string, query map[string]any) (*apiclient.Result, error) {
	token, _, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return p.api.Do(ctx, apiclient.Request{Path: path, Query: query}, token)
}

func (p *Provider) getDocument(ctx context.Context, path string, query map[string]any) (*summarize.Document, error) {
	res, err := p.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	body, err := res.JSONBody()
	if err != nil {
		return nil, err
	}
	return summarize.DecodeDocument(body)
}
