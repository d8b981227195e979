package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"apsmcp/internal/oauth"
	"apsmcp/pkg/logging"
)

// handleAuthStatus reports configuration and session state without any I/O.
func (p *Provider) handleAuthStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := AuthStatus{
		Mode:  string(oauth.AuthModeApplication),
		Scope: p.opts.Scope,
	}

	if _, err := p.opts.Credentials(); err != nil {
		status.CredentialsError = err.Error()
		status.Hint = "Configure client credentials before calling any API tool"
	} else {
		status.CredentialsConfigured = true
	}

	if p.auth != nil {
		session := p.auth.Status()
		status.Session = session
		if session.State == oauth.StateAuthenticated.String() {
			status.Mode = string(oauth.AuthModeUser)
		} else if status.Hint == "" {
			status.Hint = "Calls use the application token; run " + ToolLogin + " for user-scoped data"
		}
	}

	return jsonResult(status), nil
}

func (p *Provider) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if p.auth == nil {
		return errorf("Interactive login is not available in this server"), nil
	}

	creds, err := p.opts.Credentials()
	if err != nil {
		return errorResult(err), nil
	}

	_, err = p.auth.Login(ctx, oauth.LoginOptions{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scope:        request.GetString("scope", p.opts.Scope),
		CallbackPort: p.opts.CallbackPort,
		OnAuthURL: func(url string) {
			logging.Info(subsystem, "Open this URL to sign in if no browser window appears: %s", url)
		},
	})
	if err != nil {
		return errorResult(err), nil
	}

	return jsonResult(LoginResult{Status: "authenticated", Session: p.auth.Status()}), nil
}

func (p *Provider) handleLogout(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if p.auth == nil {
		return errorf("Interactive login is not available in this server"), nil
	}
	if err := p.auth.Logout(); err != nil {
		return errorf("Failed to clear session: %v", err), nil
	}
	return jsonResult(map[string]string{"status": "logged_out"}), nil
}
