package host

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azdo-mcp/internal/auth"
	"azdo-mcp/internal/compose"
	"azdo-mcp/internal/config"
	"azdo-mcp/internal/domains"
	"azdo-mcp/internal/platform"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"x","version":"1"}}}`

const listToolsBody = `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`

type noTenant struct{}

func (noTenant) Resolve(context.Context, string) (string, error) { return "", nil }

func pingRegistrar(s *server.MCPServer, _ auth.TokenProvider, _ platform.ClientFactory, _ func() string, _ domains.Set, org string) {
	s.AddTool(mcp.NewTool("ping", mcp.WithDescription("Replies with the organization.")),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(org), nil
		})
}

func testCompose(t *testing.T, topology compose.Topology, sc config.SessionConfig) *compose.Composition {
	t.Helper()
	comp, err := compose.Compose(context.Background(), ComposeConfig(topology, sc, "1.0.0"),
		compose.WithTenantResolver(noTenant{}), compose.WithRegistrar(pingRegistrar))
	require.NoError(t, err)
	return comp
}

// composeRecorder records the session configurations it composed.
type composeRecorder struct {
	mu      sync.Mutex
	configs []config.SessionConfig
	comps   []*compose.Composition
}

func (c *composeRecorder) compose(ctx context.Context, sc config.SessionConfig) (*compose.Composition, error) {
	comp, err := compose.Compose(ctx, ComposeConfig(compose.StatefulHTTP, sc, "1.0.0"),
		compose.WithTenantResolver(noTenant{}), compose.WithRegistrar(pingRegistrar))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.configs = append(c.configs, sc)
	c.comps = append(c.comps, comp)
	c.mu.Unlock()
	return comp, nil
}

func mcpRequest(t *testing.T, h http.Handler, method, query, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/mcp"
	if query != "" {
		target += "?" + query
	}
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		req.Header.Set(SessionIDHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeStdio(t *testing.T) {
	comp := testCompose(t, compose.Stdio, config.SessionConfig{Organization: "acme", Authentication: "pat"})

	in := strings.NewReader(initializeBody + "\n" + listToolsBody + "\n")
	var out bytes.Buffer
	require.NoError(t, ServeStdio(context.Background(), comp, in, &out))

	dec := json.NewDecoder(&out)
	var initResp, listResp map[string]interface{}
	require.NoError(t, dec.Decode(&initResp))
	require.NoError(t, dec.Decode(&listResp))
	assert.Contains(t, listResp["result"], "tools")
	assert.Equal(t, "AzureDevOps.MCP/1.0.0 x/1", comp.UserAgent.UserAgent())
}

func TestStatelessHandler(t *testing.T) {
	comp := testCompose(t, compose.StatelessHTTP, config.SessionConfig{Organization: "acme", Authentication: "pat"})
	h := NewStatelessHandler(comp, "/mcp")

	rec := mcpRequest(t, h, http.MethodPost, "", "", initializeBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), compose.ServerName)
	assert.Empty(t, rec.Header().Get(SessionIDHeader))

	rec = mcpRequest(t, h, http.MethodPost, "", "", listToolsBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"ping"`)
}

func openQuery(extra url.Values) string {
	q := url.Values{"organization": {"acme"}, "authentication": {"pat"}, "pat": {"secret"}}
	for k, v := range extra {
		q[k] = v
	}
	return q.Encode()
}

func TestSessionFactory_OpensAndRoutesSessions(t *testing.T) {
	rec := &composeRecorder{}
	f := NewSessionFactory(rec.compose, "/mcp")

	resp := mcpRequest(t, f, http.MethodPost, openQuery(url.Values{"domains": {"Core", "wiki"}}), "", initializeBody)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	id := resp.Header().Get(SessionIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, f.Len())

	require.Len(t, rec.configs, 1)
	assert.Equal(t, "acme", rec.configs[0].Organization)
	assert.Equal(t, []string{"Core", "wiki"}, rec.configs[0].Domains)
	assert.Equal(t, domains.Set{domains.Core: {}, domains.Wiki: {}}, rec.comps[0].Domains)
	assert.Equal(t, "AzureDevOps.MCP/1.0.0 x/1", rec.comps[0].UserAgent.UserAgent())

	resp = mcpRequest(t, f, http.MethodPost, "", id, listToolsBody)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"ping"`)
	assert.Len(t, rec.configs, 1, "follow-up requests reuse the session")
}

func TestSessionFactory_SessionsAreIndependent(t *testing.T) {
	rec := &composeRecorder{}
	f := NewSessionFactory(rec.compose, "/mcp")

	first := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody)
	require.Equal(t, http.StatusOK, first.Code)
	second := mcpRequest(t, f, http.MethodPost, openQuery(url.Values{"organization": {"fabrikam"}}), "", initializeBody)
	require.Equal(t, http.StatusOK, second.Code)

	assert.NotEqual(t, first.Header().Get(SessionIDHeader), second.Header().Get(SessionIDHeader))
	require.Len(t, rec.comps, 2)
	assert.NotSame(t, rec.comps[0].UserAgent, rec.comps[1].UserAgent)
	assert.Equal(t, "fabrikam", rec.comps[1].Config.Organization)
	assert.Equal(t, 2, f.Len())
}

func TestSessionFactory_RejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing organization", query: url.Values{"authentication": {"azcli"}}.Encode(), want: http.StatusBadRequest},
		{name: "missing authentication", query: url.Values{"organization": {"acme"}}.Encode(), want: http.StatusBadRequest},
		{name: "pat without token", query: url.Values{"organization": {"acme"}, "authentication": {"pat"}}.Encode(), want: http.StatusBadRequest},
		{name: "unknown domain", query: openQuery(url.Values{"domains": {"pipelinez"}}), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSessionFactory((&composeRecorder{}).compose, "/mcp")
			resp := mcpRequest(t, f, http.MethodPost, tt.query, "", initializeBody)
			assert.Equal(t, tt.want, resp.Code)
			assert.Equal(t, 0, f.Len())
		})
	}
}

func TestSessionFactory_PATOnly(t *testing.T) {
	rec := &composeRecorder{}
	f := NewSessionFactory(rec.compose, "/mcp", WithPATOnly(true))

	q := url.Values{"organization": {"acme"}, "authentication": {"interactive"}, "pat": {"secret"}}
	resp := mcpRequest(t, f, http.MethodPost, q.Encode(), "", initializeBody)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, rec.comps, 1)
	assert.Equal(t, auth.PAT, rec.comps[0].Config.Strategy)

	resp = mcpRequest(t, f, http.MethodPost, url.Values{"organization": {"acme"}}.Encode(), "", initializeBody)
	assert.Equal(t, http.StatusBadRequest, resp.Code, "pat is required")
}

func TestSessionFactory_UnknownSession(t *testing.T) {
	f := NewSessionFactory((&composeRecorder{}).compose, "/mcp")

	resp := mcpRequest(t, f, http.MethodPost, "", "mcp-session-does-not-exist", listToolsBody)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = mcpRequest(t, f, http.MethodGet, "", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSessionFactory_NonInitializeRequestOpensNothing(t *testing.T) {
	rec := &composeRecorder{}
	f := NewSessionFactory(rec.compose, "/mcp")

	for _, body := range []string{listToolsBody, `[` + initializeBody + `]`, `not json`} {
		resp := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Empty(t, resp.Header().Get(SessionIDHeader))
	}
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, rec.configs, "nothing is composed before initialize")

	resp := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, rec.configs, 1)
}

func TestSessionFactory_MaxSessions(t *testing.T) {
	f := NewSessionFactory((&composeRecorder{}).compose, "/mcp", WithMaxSessions(1))

	resp := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, 1, f.Len())
}

func TestSessionFactory_Delete(t *testing.T) {
	f := NewSessionFactory((&composeRecorder{}).compose, "/mcp")

	resp := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody)
	require.Equal(t, http.StatusOK, resp.Code)
	id := resp.Header().Get(SessionIDHeader)

	resp = mcpRequest(t, f, http.MethodDelete, "", id, "")
	assert.Less(t, resp.Code, http.StatusBadRequest)
	assert.Equal(t, 0, f.Len())

	resp = mcpRequest(t, f, http.MethodPost, "", id, listToolsBody)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSessionFactory_SweepsIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := NewSessionFactory((&composeRecorder{}).compose, "/mcp", WithSessionTTL(10*time.Minute), WithSessionClock(clock))

	idle := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody).Header().Get(SessionIDHeader)
	active := mcpRequest(t, f, http.MethodPost, openQuery(nil), "", initializeBody).Header().Get(SessionIDHeader)
	require.Equal(t, 2, f.Len())

	now = now.Add(8 * time.Minute)
	resp := mcpRequest(t, f, http.MethodPost, "", active, listToolsBody)
	require.Equal(t, http.StatusOK, resp.Code)

	now = now.Add(5 * time.Minute)
	f.Sweep()
	assert.Equal(t, 1, f.Len())

	assert.Equal(t, http.StatusNotFound, mcpRequest(t, f, http.MethodPost, "", idle, listToolsBody).Code)
	assert.Equal(t, http.StatusOK, mcpRequest(t, f, http.MethodPost, "", active, listToolsBody).Code)
}

func TestSessionFactory_OpenStreamKeepsSessionAlive(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := NewSessionFactory((&composeRecorder{}).compose, "/mcp", WithSessionTTL(10*time.Minute), WithSessionClock(clock))

	started := make(chan struct{})
	release := make(chan struct{})
	stream := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		close(started)
		<-release
	})
	f.sessions["streaming"] = &session{id: "streaming", handler: stream, lastSeen: now}

	done := make(chan struct{})
	go func() {
		defer close(done)
		mcpRequest(t, f, http.MethodGet, "", "streaming", "")
	}()
	<-started

	now = now.Add(30 * time.Minute)
	f.Sweep()
	assert.Equal(t, 1, f.Len(), "a session with an open stream is not idle")

	close(release)
	<-done

	now = now.Add(8 * time.Minute)
	f.Sweep()
	assert.Equal(t, 1, f.Len(), "the idle clock restarts when the stream ends")

	now = now.Add(5 * time.Minute)
	f.Sweep()
	assert.Equal(t, 0, f.Len())
}

func TestSessionFactory_RunStopsOnCancel(t *testing.T) {
	f := NewSessionFactory((&composeRecorder{}).compose, "/mcp", WithSessionTTL(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
