package oauth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/go-chi/chi/v5"

	"apsmcp/pkg/logging"
)

// DefaultCallbackPort is the default port for the local callback listener.
const DefaultCallbackPort = 8910

// CallbackPath is the only path the listener serves.
const CallbackPath = "/callback"

const callbackPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ if .Error }}Sign-in failed{{ else }}Signed in{{ end }}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 4em auto; max-width: 36em; color: #222; }
h1 { font-size: 1.4em; }
.error { color: #b00020; }
code { background: #f3f3f3; padding: 0.1em 0.3em; }
</style>
</head>
<body>
{{- if .Error }}
<h1 class="error">Sign-in failed</h1>
<p>The authorization server returned <code>{{ .Error }}</code>.</p>
<p>{{ .Description | default "No description was provided." | trunc 500 }}</p>
{{- else }}
<h1>Signed in</h1>
<p>You can close this window and return to your assistant.</p>
{{- end }}
</body>
</html>
`

var callbackPage = template.Must(template.New("callback").Funcs(sprig.FuncMap()).Parse(callbackPageTemplate))

// CallbackResult is the query of the authorization redirect.
type CallbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// IsError reports whether the provider denied the request.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// CallbackServer is a one-shot local listener for the authorization
// redirect. Only the first request to CallbackPath is processed; every
// other path is a 404.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan *CallbackResult
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
}

// NewCallbackServer creates a listener for port. Port 0 selects a free port,
// which is only useful in tests because the redirect URI must be registered.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:     port,
		resultCh: make(chan *CallbackResult, 1),
		errorCh:  make(chan error, 1),
	}
}

// Start binds the listener and returns the redirect URI. A bind failure is
// returned as *BindError. The server stops when ctx is done.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", &BindError{Addr: addr, Err: err}
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("OAuth", "Callback listener started on %s", addr)
	return s.RedirectURI(), nil
}

func (s *CallbackServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(securityHeaders)
	r.Get(CallbackPath, s.handleCallback)
	r.NotFound(http.NotFound)
	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// WaitForCallback blocks until the callback arrives, the server fails or
// ctx is done.
func (s *CallbackServer) WaitForCallback(ctx context.Context) (*CallbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	handled := false
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusConflict)
	}
}

func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := &CallbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}
	if !result.IsError() && result.Code == "" {
		result.Error = "missing_code"
		result.ErrorDescription = "The redirect carried neither a code nor an error."
	}

	status := http.StatusOK
	if result.IsError() {
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := callbackPage.Execute(w, map[string]string{
		"Error":       result.Error,
		"Description": result.ErrorDescription,
	}); err != nil {
		logging.Warn("OAuth", "Failed to render callback page: %v", err)
	}

	select {
	case s.resultCh <- result:
	default:
	}
}

// Stop shuts the listener down. It is safe to call more than once.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// RedirectURI is the URI to register with the application. It uses
// localhost, which the platform expects in registered callback URLs.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}
