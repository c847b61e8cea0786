package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"azdo-mcp/internal/compose"
	"azdo-mcp/internal/config"
	"azdo-mcp/internal/domains"
	"azdo-mcp/internal/metrics"
	"azdo-mcp/pkg/logging"
)

// SessionIDHeader carries the MCP session id on streamable HTTP requests.
const SessionIDHeader = "Mcp-Session-Id"

// Reasons recorded in metrics.SessionsRejected.
const (
	rejectInvalid       = "invalid"
	rejectCapacity      = "capacity"
	rejectCompose       = "compose"
	rejectUninitialized = "uninitialized"
)

// ComposeFunc builds the composition of a new session.
type ComposeFunc func(ctx context.Context, sc config.SessionConfig) (*compose.Composition, error)

type session struct {
	id       string
	comp     *compose.Composition
	handler  http.Handler
	lastSeen time.Time
	// inflight counts requests still being served, including open streams.
	inflight int
}

// SessionFactory is the stateful HTTP topology. Each session owns a
// separate composition.
type SessionFactory struct {
	composeFn   ComposeFunc
	endpoint    string
	patOnly     bool
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	pending  int
}

// SessionOption configures a SessionFactory.
type SessionOption func(*SessionFactory)

// WithSessionTTL drops sessions idle for longer than ttl. Zero disables
// expiry.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(f *SessionFactory) { f.ttl = ttl }
}

// WithMaxSessions caps concurrent sessions. Zero means unlimited.
func WithMaxSessions(n int) SessionOption {
	return func(f *SessionFactory) { f.maxSessions = n }
}

// WithPATOnly forces pat authentication for every session.
func WithPATOnly(patOnly bool) SessionOption {
	return func(f *SessionFactory) { f.patOnly = patOnly }
}

// WithSessionClock replaces time.Now.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(f *SessionFactory) { f.now = now }
}

// NewSessionFactory returns a factory composing sessions with composeFn.
func NewSessionFactory(composeFn ComposeFunc, endpoint string, opts ...SessionOption) *SessionFactory {
	f := &SessionFactory{
		composeFn: composeFn,
		endpoint:  endpoint,
		ttl:       config.DefaultSessionTTL,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Len returns the number of live sessions.
func (f *SessionFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *SessionFactory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(SessionIDHeader)
	if id == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "missing "+SessionIDHeader+" header", http.StatusBadRequest)
			return
		}
		f.openSession(w, r)
		return
	}

	sess := f.acquire(id)
	if sess == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	defer f.settle(sess)
	sess.handler.ServeHTTP(w, r)

	if r.Method == http.MethodDelete {
		f.remove(id, "closed by client")
	}
}

func (f *SessionFactory) openSession(w http.ResponseWriter, r *http.Request) {
	method, err := requestMethod(r)
	if err != nil {
		http.Error(w, "reading request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if method != string(mcp.MethodInitialize) {
		metrics.SessionsRejected.WithLabelValues(rejectUninitialized).Inc()
		logging.Debug("Sessions", "Rejecting %q request without session id", method)
		http.Error(w, "missing "+SessionIDHeader+" header", http.StatusBadRequest)
		return
	}

	if !f.reserve() {
		metrics.SessionsRejected.WithLabelValues(rejectCapacity).Inc()
		logging.Warn("Sessions", "Rejecting new session: limit of %d reached", f.maxSessions)
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}
	defer f.release()

	sc, err := config.DecodeSessionConfig(r.URL.Query())
	if err == nil {
		sc.Normalize(f.patOnly)
		err = sc.Validate()
	}
	if err != nil {
		metrics.SessionsRejected.WithLabelValues(rejectInvalid).Inc()
		logging.Warn("Sessions", "Rejecting session configuration: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comp, err := f.composeFn(r.Context(), sc)
	if err != nil {
		metrics.SessionsRejected.WithLabelValues(rejectCompose).Inc()
		logging.Error("Sessions", err, "Failed to compose session for %s", sc.Organization)
		http.Error(w, err.Error(), composeStatus(err))
		return
	}

	sess := &session{
		comp:    comp,
		handler: server.NewStreamableHTTPServer(comp.Server, server.WithEndpointPath(f.endpoint)),
	}
	cw := &captureWriter{ResponseWriter: w, onHeader: func(status int) {
		id := w.Header().Get(SessionIDHeader)
		if id == "" || status >= http.StatusBadRequest {
			return
		}
		sess.id = id
		f.add(sess)
	}}
	sess.handler.ServeHTTP(cw, r)

	if sess.id == "" {
		logging.Debug("Sessions", "Request without session id did not open a session")
	}
}

// requestMethod returns the JSON-RPC method of the request body and restores
// the body for the session handler. Batches and malformed bodies yield "".
func requestMethod(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var msg struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", nil
	}
	return msg.Method, nil
}

func composeStatus(err error) int {
	var cfgErrs config.ConfigurationErrorCollection
	var cfgErr config.ConfigurationError
	var unknown *domains.UnknownDomainError
	if errors.As(err, &cfgErrs) || errors.As(err, &cfgErr) || errors.As(err, &unknown) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (f *SessionFactory) reserve() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.maxSessions > 0 && len(f.sessions)+f.pending >= f.maxSessions {
		return false
	}
	f.pending++
	return true
}

func (f *SessionFactory) release() {
	f.mu.Lock()
	f.pending--
	f.mu.Unlock()
}

func (f *SessionFactory) add(sess *session) {
	f.mu.Lock()
	sess.lastSeen = f.now()
	f.sessions[sess.id] = sess
	n := len(f.sessions)
	f.mu.Unlock()

	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Set(float64(n))
	logging.Info("Sessions", "Opened session %s for %s (authentication=%s)",
		sess.id, sess.comp.Config.Organization, sess.comp.Config.Strategy)
}

// acquire marks a request against the session as in flight.
func (f *SessionFactory) acquire(id string) *session {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil
	}
	sess.inflight++
	sess.lastSeen = f.now()
	return sess
}

// settle ends a request started with acquire. The idle clock restarts when
// the request finishes, so a long stream counts as activity.
func (f *SessionFactory) settle(sess *session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess.inflight--
	sess.lastSeen = f.now()
}

func (f *SessionFactory) remove(id, reason string) {
	f.mu.Lock()
	_, ok := f.sessions[id]
	delete(f.sessions, id)
	n := len(f.sessions)
	f.mu.Unlock()

	if ok {
		metrics.SessionsActive.Set(float64(n))
		logging.Info("Sessions", "Removed session %s: %s", id, reason)
	}
}

// Sweep removes sessions idle for longer than the TTL. Sessions with a
// request in flight are never idle.
func (f *SessionFactory) Sweep() {
	if f.ttl <= 0 {
		return
	}
	cutoff := f.now().Add(-f.ttl)

	var expired []string
	f.mu.Lock()
	for id, sess := range f.sessions {
		if sess.inflight == 0 && sess.lastSeen.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	f.mu.Unlock()

	for _, id := range expired {
		f.remove(id, "idle timeout")
	}
}

// Run sweeps idle sessions until ctx is cancelled.
func (f *SessionFactory) Run(ctx context.Context) error {
	if f.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	interval := f.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.Sweep()
		}
	}
}

// captureWriter reports the status code before the header reaches the
// client, so a new session is routable by the time the client sees its id.
type captureWriter struct {
	http.ResponseWriter
	onHeader    func(status int)
	wroteHeader bool
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.wroteHeader = true
		c.onHeader(status)
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	if fl, ok := c.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}

func (c *captureWriter) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}
