package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/melih/lighthouse-mcp/internal/config"
	"github.com/melih/lighthouse-mcp/internal/logging"
	"github.com/melih/lighthouse-mcp/internal/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "silent"))
	err := cmd.Execute()
	return out.String(), err
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	require.NoError(t, err)

	var res mcp.ListToolsResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Tools)
	assert.Equal(t, "list_containers", res.Tools[0].Name)
	assert.Equal(t, len(mcp.Tools()), len(res.Tools))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "lighthouse-mcp "), out)
}

func TestServeRejectsMissingAPIKey(t *testing.T) {
	t.Setenv("MCP_API_KEY", "")
	_, err := execute(t, "serve", "--mode", "mock", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	log = logging.Nop()
	t.Setenv("MCP_API_KEY", "k")
	t.Setenv("MCP_SERVER_PORT", "4000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  mode: live\n"), 0o644))
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	cfg, err := loadConfig(5000, "127.0.0.1", "MOCK")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, config.ModeMock, cfg.Engine.Mode)

	cfg, err = loadConfig(0, "", "")
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, config.ModeLive, cfg.Engine.Mode)
}

func TestBuildServerMockMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.Engine.Mode = config.ModeMock
	cfg.Auth.APIKey = "k"

	srv, cleanup, err := buildServer(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	defer cleanup()

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`))
	req.Header.Set("x-api-key", "k")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Result mcp.ListResourcesResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, mcp.MockResources(), body.Result.Resources)

	req = httptest.NewRequest("POST", "/v1/builds", strings.NewReader(`{"repo_url":"r","image":"i"}`))
	req.Header.Set("x-api-key", "k")
	req.Header.Set("Content-Type", "application/json")
	resp, err = srv.App().Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 501, resp.StatusCode)
}

func TestBuildServerUnknownMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.Engine.Mode = "swarm"
	_, _, err := buildServer(context.Background(), cfg, logging.Nop())
	assert.EqualError(t, err, `unknown engine mode "swarm"`)
}

type fakeListener struct {
	stop      chan struct{}
	shutdown  bool
	listenErr error
}

func (f *fakeListener) Listen(string) error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return nil
}

func (f *fakeListener) Shutdown(context.Context) error {
	f.shutdown = true
	close(f.stop)
	return nil
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l := &fakeListener{stop: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, l, ":0", logging.Nop()) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, l.shutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunReturnsListenError(t *testing.T) {
	l := &fakeListener{stop: make(chan struct{}), listenErr: errors.New("address in use")}
	err := run(context.Background(), l, ":0", logging.Nop())
	assert.EqualError(t, err, "address in use")
	assert.False(t, l.shutdown)
}
