package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	clickyExec "github.com/flanksource/clicky/exec"
	"github.com/flanksource/clicky/task"
)

// Runner executes external commands such as sips, iconutil, defaults and brew
type Runner interface {
	// Run executes name with args and returns stdout, or stderr when stdout is empty
	Run(ctx context.Context, name string, args ...string) (string, error)
	// LookPath resolves name in PATH
	LookPath(name string) (string, error)
}

// ExecRunner runs commands through clicky's exec.Process
type ExecRunner struct {
	Task    *task.Task
	Timeout time.Duration
}

func NewRunner(t *task.Task) *ExecRunner {
	return &ExecRunner{Task: t, Timeout: 2 * time.Minute}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	process := &clickyExec.Process{
		Cmd:  name,
		Args: args,
	}
	if r.Task != nil {
		process = process.WithTask(r.Task)
		r.Task.V(4).Infof("exec: %s %s", name, strings.Join(args, " "))
	}
	if r.Timeout > 0 {
		process = process.WithTimeout(r.Timeout)
	}

	result := process.Run()
	stderr := result.GetStderr()
	output := result.GetStdout()
	// java -version and some macOS tools only write to stderr
	if strings.TrimSpace(output) == "" {
		output = stderr
	}

	if result.Err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return output, fmt.Errorf("%s failed: %w: %s", name, result.Err, msg)
		}
		return output, fmt.Errorf("%s failed: %w", name, result.Err)
	}
	return output, nil
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
