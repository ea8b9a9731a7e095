package runtime

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/system"
	"github.com/flanksource/ghidra-install/pkg/version"
)

var javaVersionRegex = regexp.MustCompile(`version\s+"?(\d+(?:\.\d+)*)"?`)

// ErrRuntimeNotFound is returned when no java binary is usable
var ErrRuntimeNotFound = errors.New("java runtime not found")

// ErrNoRemediation is returned when Homebrew is unavailable or remediation is disabled
var ErrNoRemediation = errors.New("no way to install java automatically")

// JavaChecker checks for a JDK in PATH and installs one with Homebrew when asked
type JavaChecker struct {
	Runner     system.Runner
	Constraint string
	// BrewCask is installed with `brew install --cask`, empty disables remediation
	BrewCask string
}

func NewJavaChecker(runner system.Runner, constraint, brewCask string) *JavaChecker {
	return &JavaChecker{Runner: runner, Constraint: constraint, BrewCask: brewCask}
}

func (j *JavaChecker) Check(ctx context.Context, t *task.Task) (Status, error) {
	status := Status{Constraint: j.Constraint}

	path, err := j.Runner.LookPath("java")
	if err != nil {
		return status, fmt.Errorf("%w in PATH", ErrRuntimeNotFound)
	}
	status.Path = path
	t.V(4).Infof("Found java binary at: %s", path)

	// The macOS /usr/bin/java stub exits non-zero when no JDK is installed
	output, err := j.Runner.Run(ctx, path, "-version")
	if err != nil {
		return status, fmt.Errorf("%w: %s -version: %v", ErrRuntimeNotFound, path, err)
	}

	status.Version = ParseJavaVersion(output)
	if status.Version == "" {
		return status, fmt.Errorf("failed to parse java version from output: %s", strings.TrimSpace(output))
	}

	constraint, err := version.ParseConstraint(j.Constraint)
	if err != nil {
		return status, err
	}
	status.Satisfied = constraint.Check(status.Version)
	if status.Satisfied {
		t.V(3).Infof("java %s satisfies %s", status.Version, constraint)
	} else {
		t.V(3).Infof("java %s does NOT satisfy %s", status.Version, constraint)
	}
	return status, nil
}

func (j *JavaChecker) Remediate(ctx context.Context, t *task.Task) error {
	if j.BrewCask == "" {
		return ErrNoRemediation
	}
	brew, err := j.Runner.LookPath("brew")
	if err != nil {
		return fmt.Errorf("%w: brew not found, install %s manually", ErrNoRemediation, j.BrewCask)
	}

	t.Infof("Installing %s with Homebrew", j.BrewCask)
	if _, err := j.Runner.Run(ctx, brew, "install", "--cask", j.BrewCask); err != nil {
		return fmt.Errorf("brew install --cask %s: %w", j.BrewCask, err)
	}
	return nil
}

// ParseJavaVersion extracts the version from `java -version` output. The legacy
// 1.x scheme is mapped to its major version (1.8.0_292 -> 8.0).
func ParseJavaVersion(output string) string {
	matches := javaVersionRegex.FindStringSubmatch(output)
	if len(matches) < 2 {
		return ""
	}
	v := strings.TrimSpace(matches[1])
	if strings.HasPrefix(v, "1.") {
		v = strings.TrimPrefix(v, "1.")
	}
	return v
}
