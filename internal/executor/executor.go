// Package executor runs external commands: apachectl and the certificate
// generation script.
package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ksyq12/sslvhost/internal/logger"
)

// DefaultPath is the search path commands run with, independent of the
// invoking shell. The script is installed under /usr/local/sbin.
const DefaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command and returns its combined output
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath resolves a command name to an executable file
	LookPath(file string) (string, error)
}

// SystemExecutor implements CommandExecutor using os/exec
type SystemExecutor struct {
	// Path replaces PATH in the child environment and is used to resolve
	// bare command names. Empty means DefaultPath.
	Path string
	// Timeout bounds each command. Zero means only ctx applies.
	Timeout time.Duration
}

// NewSystemExecutor creates an executor using DefaultPath and no timeout
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{Path: DefaultPath}
}

func (e *SystemExecutor) path() string {
	if e.Path == "" {
		return DefaultPath
	}
	return e.Path
}

// Execute runs a command and returns combined output.
// The process is killed if ctx is done or Timeout passes before it exits.
func (e *SystemExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin, err := e.LookPath(name)
	if err != nil {
		return nil, err
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = e.environ()
	cmd.WaitDelay = time.Second

	start := time.Now()
	output, err := cmd.CombinedOutput()
	logger.DebugFields("Command finished", map[string]interface{}{
		"command":  CommandLine(name, args...),
		"duration": time.Since(start).Round(time.Millisecond),
		"ok":       err == nil,
	})
	if err != nil && ctx.Err() != nil {
		return output, fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return output, err
}

// environ is the parent environment with PATH replaced
func (e *SystemExecutor) environ() []string {
	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "PATH=") {
			env = append(env, kv)
		}
	}
	return append(env, "PATH="+e.path())
}

// LookPath resolves file against Path. Names containing a slash are
// returned unchanged when they point at an executable.
func (e *SystemExecutor) LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := executable(file); err != nil {
			return "", &exec.Error{Name: file, Err: err}
		}
		return file, nil
	}
	for _, dir := range filepath.SplitList(e.path()) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, file)
		if executable(candidate) == nil {
			return candidate, nil
		}
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

func executable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return os.ErrPermission
	}
	return nil
}

// CommandLine joins a command and its arguments for messages and logs
func CommandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
}

// String renders the call as a command line
func (c CommandCall) String() string {
	return CommandLine(c.Name, c.Args...)
}

// Execute records the call and delegates to ExecuteFunc. A done ctx fails
// without recording, like a process that never started.
func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return nil, nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// CallsTo returns the recorded calls of one command.
func (m *MockExecutor) CallsTo(name string) []CommandCall {
	var out []CommandCall
	for _, c := range m.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
