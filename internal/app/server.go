package app

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"apsmcp/internal/oauth"
	"apsmcp/pkg/logging"
)

const (
	serverName             = "apsmcp"
	metricsShutdownTimeout = 5 * time.Second
)

// NewMCPServer creates the MCP server with every tool registered.
func NewMCPServer(version string, services *Services) *server.MCPServer {
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	services.Tools.Register(s)
	return s
}

func runServer(ctx context.Context, cfg *Config, services *Services, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := oauth.NewSessionWatcher(services.SessionStore.Path(), services.Session.Reload)
	if err := watcher.Start(); err != nil {
		logging.Warn("Server", "Session file watcher disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	addr := cfg.MetricsAddress
	if addr == "" {
		addr = services.Settings.Metrics.Address
	}
	if addr != "" {
		stop, err := startMetricsServer(addr, services)
		if err != nil {
			return err
		}
		defer stop()
	}

	mcpServer := NewMCPServer(cfg.Version, services)
	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(log.New(logWriter{}, "", 0))

	logging.Info("Server", "Serving %s over stdio (API host %s)", serverName, services.API.Host())
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// metricsRouter serves /metrics and a liveness check.
func metricsRouter(services *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", services.Metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func startMetricsServer(addr string, services *Services) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           metricsRouter(services),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server", err, "Metrics server stopped")
		}
	}()
	logging.Info("Server", "Metrics available at http://%s/metrics", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// logWriter forwards the stdio server's error log to the package logger.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	logging.Warn("MCP", "%s", string(p))
	return len(p), nil
}
