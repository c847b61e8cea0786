package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"azdo-mcp/internal/metrics"
	"azdo-mcp/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default timeout for writing responses.
	DefaultWriteTimeout = 120 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// HTTPServer serves the MCP handler next to health and metrics endpoints.
type HTTPServer struct {
	addr       string
	endpoint   string
	router     chi.Router
	httpServer *http.Server
	listener   net.Listener
}

// NewHTTPServer creates a server that mounts mcpHandler at endpoint.
func NewHTTPServer(addr, endpoint string, mcpHandler http.Handler) *HTTPServer {
	s := &HTTPServer{addr: addr, endpoint: endpoint}
	s.router = s.createRouter(mcpHandler)
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s
}

func (s *HTTPServer) createRouter(mcpHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Handle(s.endpoint, mcpHandler)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debug("HTTP", "%s %s -> %d (%s, request %s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

// Handler returns the router.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Listen binds the listener and returns its address.
func (s *HTTPServer) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Serve serves on the bound listener until ctx is cancelled, then shuts
// down gracefully.
func (s *HTTPServer) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("HTTP", "Listening on http://%s%s", s.listener.Addr(), s.endpoint)
		notifySystemd(daemon.SdNotifyReady)
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Run binds and serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	notifySystemd(daemon.SdNotifyStopping)
	logging.Info("HTTP", "Shutting down")
	return s.httpServer.Shutdown(ctx)
}

// notifySystemd is a no-op outside systemd.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("HTTP", "Failed to notify systemd (%s): %v", state, err)
		return
	}
	if sent {
		logging.Debug("HTTP", "Notified systemd: %s", state)
	}
}
