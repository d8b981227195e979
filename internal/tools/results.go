package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"apsmcp/internal/apiclient"
	"apsmcp/internal/config"
	"apsmcp/internal/oauth"
	pkgoauth "apsmcp/pkg/oauth"
)

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult maps err to an isError tool result. API errors become a
// structured diagnostic; everything else is a single descriptive message.
func errorResult(err error) *mcp.CallToolResult {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		data, mErr := json.MarshalIndent(map[string]any{"error": apiclient.Diagnose(apiErr)}, "", "  ")
		if mErr != nil {
			return mcp.NewToolResultError(apiErr.Error())
		}
		return mcp.NewToolResultError(string(data))
	}

	var ce config.ConfigurationError
	if errors.As(err, &ce) {
		return mcp.NewToolResultError(ce.DetailedError())
	}

	var te *pkgoauth.TokenError
	if errors.As(err, &te) {
		return mcp.NewToolResultError(fmt.Sprintf("Authentication failed: %s", te.Error()))
	}

	var ae *oauth.AuthorizationError
	if errors.As(err, &ae) {
		return mcp.NewToolResultError(fmt.Sprintf("Login was not completed: %s", ae.Error()))
	}

	switch {
	case errors.Is(err, oauth.ErrLoginTimeout):
		return mcp.NewToolResultError("Login timed out waiting for the browser callback. Run aps_login again and complete the sign-in within the time limit.")
	case apiclient.IsHostMismatch(err):
		return mcp.NewToolResultError(fmt.Sprintf("Request refused: %v", err))
	case errors.Is(err, apiclient.ErrNotJSON):
		return mcp.NewToolResultError(fmt.Sprintf("Unexpected API response: %v", err))
	}

	return mcp.NewToolResultError(err.Error())
}

func errorf(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}

// normalizeExtensions accepts a comma separated string or a list.
func normalizeExtensions(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
