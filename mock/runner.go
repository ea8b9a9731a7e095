package mock

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

type response struct {
	output string
	err    error
	fn     func(args []string) (string, error)
}

// MockRunner records commands and answers them from canned responses
type MockRunner struct {
	mu        sync.Mutex
	paths     map[string]string
	responses map[string]response
	commands  []string
}

// NewRunner creates a runner where nothing is in PATH and every command succeeds silently
func NewRunner() *MockRunner {
	return &MockRunner{
		paths:     make(map[string]string),
		responses: make(map[string]response),
	}
}

// WithPath makes LookPath(name) return path
func (m *MockRunner) WithPath(name, path string) *MockRunner {
	m.paths[name] = path
	return m
}

// WithOutput answers commands starting with prefix ("defaults read") with output
func (m *MockRunner) WithOutput(prefix, output string) *MockRunner {
	m.responses[prefix] = response{output: output}
	return m
}

// WithError fails commands starting with prefix
func (m *MockRunner) WithError(prefix string, err error) *MockRunner {
	m.responses[prefix] = response{err: err}
	return m
}

// WithHandler answers commands starting with prefix by calling fn with the arguments
func (m *MockRunner) WithHandler(prefix string, fn func(args []string) (string, error)) *MockRunner {
	m.responses[prefix] = response{fn: fn}
	return m
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	m.mu.Lock()
	command := strings.TrimSpace(name + " " + strings.Join(args, " "))
	m.commands = append(m.commands, command)

	// longest matching prefix wins
	var match string
	for prefix := range m.responses {
		if (command == prefix || strings.HasPrefix(command, prefix+" ")) && len(prefix) > len(match) {
			match = prefix
		}
	}
	resp, ok := m.responses[match]
	m.mu.Unlock()

	if !ok {
		return "", nil
	}
	if resp.fn != nil {
		return resp.fn(args)
	}
	if resp.err != nil {
		return resp.output, fmt.Errorf("%s failed: %w", name, resp.err)
	}
	return resp.output, nil
}

func (m *MockRunner) LookPath(name string) (string, error) {
	if path, ok := m.paths[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Commands returns every command run so far, as "name arg1 arg2..."
func (m *MockRunner) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// CommandsWithPrefix returns the recorded commands starting with prefix
func (m *MockRunner) CommandsWithPrefix(prefix string) []string {
	var matched []string
	for _, c := range m.Commands() {
		if c == prefix || strings.HasPrefix(c, prefix+" ") {
			matched = append(matched, c)
		}
	}
	return matched
}
