package tools

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"apsmcp/internal/apiclient"
	"apsmcp/internal/validation"
)

var allowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPatch,
	http.MethodPut,
	http.MethodDelete,
}

// handleAPIRequest forwards an arbitrary request. Method, path and host are
// all checked before a token is requested.
func (p *Provider) handleAPIRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	method := strings.ToUpper(strings.TrimSpace(request.GetString("method", http.MethodGet)))
	if !slices.Contains(allowedMethods, method) {
		return errorf("Unsupported method %q; use one of %s", method, strings.Join(allowedMethods, ", ")), nil
	}

	path, err := request.RequireString("path")
	if err != nil {
		return errorResult(err), nil
	}
	if err := validation.APIPath(path); err != nil {
		return errorResult(err), nil
	}
	if err := p.api.CheckTarget(path); err != nil {
		return errorResult(err), nil
	}

	args := request.GetArguments()
	query, _ := args["query"].(map[string]any)
	headers, err := stringMap(args["headers"])
	if err != nil {
		return errorResult(err), nil
	}

	token, mode, err := p.tokens.Token(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	res, err := p.api.Do(ctx, apiclient.Request{
		Method:  method,
		Path:    path,
		Query:   query,
		Body:    args["body"],
		Headers: headers,
	}, token)
	if err != nil {
		return errorResult(err), nil
	}

	return jsonResult(APIRequestResult{
		Status:   res.Status,
		AuthMode: string(mode),
		Response: res.Value(),
	}), nil
}

func stringMap(v any) (map[string]string, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &validation.Error{Field: "headers", Value: fmt.Sprint(v), Msg: "must be an object of header names to values"}
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out, nil
}
