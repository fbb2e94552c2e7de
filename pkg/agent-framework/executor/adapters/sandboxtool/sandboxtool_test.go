package sandboxtool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curaious/uno/pkg/agent-framework/executor"
	"github.com/curaious/uno/pkg/sandbox"
)

// fakeManager stands up a real httptest server playing the sandbox daemon,
// so Tool.Execute exercises sandbox.NewClient's actual HTTP round trip.
type fakeManager struct {
	srv *httptest.Server
}

func newFakeManager(t *testing.T) *fakeManager {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return &fakeManager{srv: srv}
}

func (m *fakeManager) CreateSandbox(ctx context.Context, image, agentName, namespace, sessionID string) (*sandbox.SandboxHandle, error) {
	host := strings.TrimPrefix(m.srv.URL, "http://")
	parts := strings.SplitN(host, ":", 2)
	port, _ := strconv.Atoi(parts[1])
	return &sandbox.SandboxHandle{SessionID: sessionID, PodIP: parts[0], Port: port}, nil
}

func (m *fakeManager) GetSandbox(ctx context.Context, sessionID string) (*sandbox.SandboxHandle, error) {
	return nil, nil
}

func (m *fakeManager) DeleteSandbox(ctx context.Context, sessionID string) error { return nil }

func TestTool_ExecutesBashCommandAgainstSandboxDaemon(t *testing.T) {
	manager := newFakeManager(t)
	tool := New(manager, "python:3.12")

	call := executor.ToolCall{ID: "c1", Name: "execute_bash_commands", Arguments: `{"code":"echo hi"}`}
	_, resCh := tool.Execute(context.Background(), call, executor.ToolExecContext{ManifestID: "assistant", StateID: "run-1"})

	result := <-resCh
	require.Equal(t, executor.ToolResultSuccess, result.Kind)
	assert.Equal(t, "{}", result.Value)
}

func TestTool_InvalidArgumentsAreRejected(t *testing.T) {
	manager := newFakeManager(t)
	tool := New(manager, "python:3.12")

	call := executor.ToolCall{ID: "c1", Name: "execute_bash_commands", Arguments: `not json`}
	_, resCh := tool.Execute(context.Background(), call, executor.ToolExecContext{})

	result := <-resCh
	assert.Equal(t, executor.ToolResultErrorKind, result.Kind)
	assert.Equal(t, executor.ErrCodeValidation.Code, result.ErrCode)
}
