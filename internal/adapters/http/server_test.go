package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/melih/lighthouse-mcp/internal/adapters/mock"
	"github.com/melih/lighthouse-mcp/internal/core/domain"
	"github.com/melih/lighthouse-mcp/internal/core/ports"
	"github.com/melih/lighthouse-mcp/internal/logging"
	"github.com/melih/lighthouse-mcp/internal/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "s3cret-key"

// countingEngine forwards to a real engine and counts every call.
type countingEngine struct {
	inner ports.ContainerService
	calls atomic.Int32
	err   error
}

func (e *countingEngine) hit() error {
	e.calls.Add(1)
	return e.err
}

func (e *countingEngine) ListContainers(ctx context.Context, all bool) ([]domain.Container, error) {
	if err := e.hit(); err != nil {
		return nil, err
	}
	return e.inner.ListContainers(ctx, all)
}

func (e *countingEngine) InspectContainer(ctx context.Context, name string) (domain.ContainerDetail, error) {
	if err := e.hit(); err != nil {
		return domain.ContainerDetail{}, err
	}
	return e.inner.InspectContainer(ctx, name)
}

func (e *countingEngine) StartContainer(ctx context.Context, name string) error {
	if err := e.hit(); err != nil {
		return err
	}
	return e.inner.StartContainer(ctx, name)
}

func (e *countingEngine) StopContainer(ctx context.Context, name string) error {
	if err := e.hit(); err != nil {
		return err
	}
	return e.inner.StopContainer(ctx, name)
}

func (e *countingEngine) RestartContainer(ctx context.Context, name string) error {
	if err := e.hit(); err != nil {
		return err
	}
	return e.inner.RestartContainer(ctx, name)
}

func (e *countingEngine) GetContainerLogs(ctx context.Context, name string, tail int) (string, error) {
	if err := e.hit(); err != nil {
		return "", err
	}
	return e.inner.GetContainerLogs(ctx, name, tail)
}

func (e *countingEngine) ListNetworks(ctx context.Context) ([]domain.Network, error) {
	if err := e.hit(); err != nil {
		return nil, err
	}
	return e.inner.ListNetworks(ctx)
}

func (e *countingEngine) ListVolumes(ctx context.Context) ([]domain.Volume, error) {
	if err := e.hit(); err != nil {
		return nil, err
	}
	return e.inner.ListVolumes(ctx)
}

type stubBuilder struct {
	req domain.BuildRequest
	err error
}

func (b *stubBuilder) BuildImage(_ context.Context, req domain.BuildRequest) (domain.BuildResult, error) {
	b.req = req
	if b.err != nil {
		return domain.BuildResult{}, b.err
	}
	return domain.BuildResult{Image: req.Image, RepoURL: req.RepoURL, Revision: "abc123"}, nil
}

func newTestServer(t *testing.T, builder ports.BuilderService) (*Server, *countingEngine) {
	t.Helper()
	inner, err := mock.NewEngine(logging.Nop())
	require.NoError(t, err)
	engine := &countingEngine{inner: inner}
	rpc := mcp.NewDispatcher(engine, mcp.MockResources(), logging.Nop())
	srv := NewServer(Options{
		Name:           "lighthouse-mcp",
		Mode:           "mock",
		APIKey:         testKey,
		AllowedOrigins: []string{"http://localhost:3000"},
		BodyLimit:      1 << 20,
	}, engine, builder, rpc, logging.Nop())
	return srv, engine
}

func do(t *testing.T, srv *Server, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func withKey(key string) map[string]string {
	return map[string]string{APIKeyHeader: key}
}

func TestProtectedRoutesRejectBadKeys(t *testing.T) {
	routes := []struct{ method, path, body string }{
		{"POST", "/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"stop_container","arguments":{"container_name":"grafana"}}}`},
		{"GET", "/mcp/manifest", ""},
		{"GET", "/v1/status", ""},
		{"GET", "/v1/services", ""},
		{"GET", "/v1/containers", ""},
		{"GET", "/api/v1/status", ""},
		{"POST", "/v1/builds", `{"repo_url":"https://example.com/a.git","image":"a"}`},
	}
	keys := map[string]map[string]string{
		"missing":    nil,
		"empty":      withKey(""),
		"wrong":      withKey("nope"),
		"wrong case": withKey(strings.ToUpper(testKey)),
		"prefix":     withKey(testKey[:4]),
	}

	for _, rt := range routes {
		for name, headers := range keys {
			t.Run(rt.method+" "+rt.path+" "+name, func(t *testing.T) {
				builder := &stubBuilder{}
				srv, engine := newTestServer(t, builder)

				status, body := do(t, srv, rt.method, rt.path, rt.body, headers)
				assert.Equal(t, 401, status)
				assert.Equal(t, "Invalid API key", body["error"])
				assert.Zero(t, engine.calls.Load())
				assert.Empty(t, builder.req.Image)
			})
		}
	}
}

func TestAPIKeyAuthEmptyExpectedRejects(t *testing.T) {
	inner, err := mock.NewEngine(logging.Nop())
	require.NoError(t, err)
	engine := &countingEngine{inner: inner}
	srv := NewServer(Options{Name: "x", Mode: "mock"}, engine, nil,
		mcp.NewDispatcher(engine, mcp.MockResources(), logging.Nop()), logging.Nop())

	status, _ := do(t, srv, "GET", "/v1/containers", "", withKey(""))
	assert.Equal(t, 401, status)
	assert.Zero(t, engine.calls.Load())
}

func TestPublicRoutes(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	status, body := do(t, srv, "GET", "/health", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["mode"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "timestamp")

	status, body = do(t, srv, "GET", "/", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "lighthouse-mcp", body["service"])
	assert.Equal(t, "running", body["status"])
	endpoints := body["endpoints"].(map[string]any)
	assert.Equal(t, "/mcp", endpoints["mcp"])

	status, body = do(t, srv, "GET", "/v1", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "/v1/builds", body["endpoints"].(map[string]any)["builds"])

	assert.Zero(t, engine.calls.Load())
}

func TestMCPEndpoint(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	status, body := do(t, srv, "POST", "/mcp",
		`{"jsonrpc":"2.0","id":"req-1","method":"tools/call","params":{"name":"stop_container","arguments":{"container_name":"grafana"}}}`,
		withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Equal(t, "2.0", body["jsonrpc"])
	assert.Equal(t, "req-1", body["id"])
	assert.NotContains(t, body, "error")
	assert.Equal(t, int32(1), engine.calls.Load())

	content := body["result"].(map[string]any)["content"].([]any)
	text := content[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "Container grafana stopped successfully")
}

func TestMCPEndpointErrorsStay200(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, body := do(t, srv, "POST", "/mcp", `{"jsonrpc":"2.0","id":7,"method":"nope"}`, withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(7), body["id"])
	rpcErr := body["error"].(map[string]any)
	assert.Equal(t, float64(-32601), rpcErr["code"])
	assert.Equal(t, "Method not found", rpcErr["message"])

	status, body = do(t, srv, "POST", "/mcp", `{not json`, withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Nil(t, body["id"])
	assert.Equal(t, float64(-32603), body["error"].(map[string]any)["code"])
}

func TestManifest(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, body := do(t, srv, "GET", "/mcp/manifest", "", withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Equal(t, "lighthouse-mcp", body["name"])
	m := body["mcp"].(map[string]any)
	assert.Equal(t, "0.1.0", m["version"])
	assert.Equal(t, map[string]any{"resources": true, "tools": true, "logging": true}, m["capabilities"])
}

func TestStatusRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, body := do(t, srv, "GET", "/v1/status", "", withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Len(t, body["services"], 5)
	assert.Contains(t, body, "memory")
	first := body["services"].([]any)[0].(map[string]any)
	assert.Equal(t, "mcp-server", first["name"])
	assert.Contains(t, first, "ports")

	// Stop one so the running filter has something to drop.
	do(t, srv, "POST", "/mcp",
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"stop_container","arguments":{"container_name":"traefik"}}}`,
		withKey(testKey))

	status, body = do(t, srv, "GET", "/v1/services", "", withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(4), body["count"])

	status, body = do(t, srv, "GET", "/v1/containers", "", withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(5), body["count"])

	status, body = do(t, srv, "GET", "/api/v1/status", "", withKey(testKey))
	assert.Equal(t, 200, status)
	assert.Equal(t, "running", body["status"])
	legacy := body["services"].([]any)[0].(map[string]any)
	assert.NotContains(t, legacy, "ports")
}

func TestStatusEngineFailure(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	engine.err = errors.New("Cannot connect to the Docker daemon")

	status, body := do(t, srv, "GET", "/v1/containers", "", withKey(testKey))
	assert.Equal(t, 500, status)
	assert.Equal(t, "Cannot connect to the Docker daemon", body["error"])
}

func TestBuildRoute(t *testing.T) {
	builder := &stubBuilder{}
	srv, _ := newTestServer(t, builder)

	status, body := do(t, srv, "POST", "/v1/builds",
		`{"repo_url":"https://example.com/app.git","image":"app:1","branch":"main"}`, withKey(testKey))
	assert.Equal(t, 201, status)
	assert.Equal(t, "app:1", body["image"])
	assert.Equal(t, "abc123", body["revision"])
	assert.Equal(t, "main", builder.req.Branch)

	status, body = do(t, srv, "POST", "/v1/builds", `{"image":"app:1"}`, withKey(testKey))
	assert.Equal(t, 400, status)
	assert.Equal(t, "repo_url is required", body["error"])

	builder.err = errors.New("clone failed")
	status, body = do(t, srv, "POST", "/v1/builds",
		`{"repo_url":"https://example.com/app.git","image":"app:1"}`, withKey(testKey))
	assert.Equal(t, 500, status)
	assert.Equal(t, "Build failed: clone failed", body["error"])
}

func TestBuildRouteWithoutBuilder(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, body := do(t, srv, "POST", "/v1/builds",
		`{"repo_url":"https://example.com/app.git","image":"app:1"}`, withKey(testKey))
	assert.Equal(t, 501, status)
	assert.Contains(t, body["error"], "not available")
}

func TestUnknownRouteIsJSON(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, body := do(t, srv, "GET", "/nope", "", nil)
	assert.Equal(t, 404, status)
	assert.Contains(t, body["error"], "Cannot GET /nope")
}

func TestSafeEqual(t *testing.T) {
	assert.True(t, safeEqual("abc", "abc"))
	assert.False(t, safeEqual("abc", "abd"))
	assert.False(t, safeEqual("abc", "abcd"))
	assert.False(t, safeEqual("", "a"))
}
