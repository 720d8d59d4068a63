// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Input   []byte
}

// MockCommandExecutor provides a configurable mock for testing
// CLI-backed components. Response keys are "command arg1 arg2 ..."
// strings; a key that is a prefix of the invoked command line also
// matches, which keeps tests stable against trailing flags.
type MockCommandExecutor struct {
	mu sync.Mutex

	Responses       map[string]MockResponse
	DefaultResponse *MockResponse
	RecordedCalls   []RecordedCall
	StrictMode      bool
}

// NewMockCommandExecutor creates a mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse registers stdout for a command pattern.
func (m *MockCommandExecutor) AddResponse(pattern, stdout string) {
	m.Responses[pattern] = MockResponse{Stdout: []byte(stdout)}
}

// AddErrorResponse registers stderr plus a non-nil error for a pattern.
func (m *MockCommandExecutor) AddErrorResponse(pattern, stderr string, exitCode int) {
	m.Responses[pattern] = MockResponse{
		Stderr: []byte(stderr),
		Err:    fmt.Errorf("exit status %d", exitCode),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return m.ExecuteWithInput(ctx, nil, name, args...)
}

// ExecuteWithInput returns the mocked response, recording stdin.
func (m *MockCommandExecutor) ExecuteWithInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{Command: name, Args: args, Input: input})

	key := name
	if len(args) > 0 {
		key += " " + strings.Join(args, " ")
	}

	if resp, ok := m.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}
	for pattern, resp := range m.Responses {
		if strings.HasPrefix(key, pattern) {
			return resp.Stdout, resp.Stderr, resp.Err
		}
	}
	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}
	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}
	return []byte{}, []byte{}, nil
}

// AssertCalled fails the test unless the named command was executed.
func (m *MockCommandExecutor) AssertCalled(t *testing.T, command string) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.RecordedCalls {
		if call.Command == command {
			return
		}
	}
	t.Errorf("expected command %q to be called", command)
}

// Calls returns the recorded invocations as joined command lines.
func (m *MockCommandExecutor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.RecordedCalls))
	for _, call := range m.RecordedCalls {
		line := call.Command
		if len(call.Args) > 0 {
			line += " " + strings.Join(call.Args, " ")
		}
		out = append(out, line)
	}
	return out
}
