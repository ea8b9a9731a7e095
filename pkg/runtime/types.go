package runtime

import (
	"context"

	"github.com/flanksource/clicky/task"
)

// Status describes the detected runtime
type Status struct {
	Path       string `json:"path,omitempty"`
	Version    string `json:"version,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	// Satisfied is true when the runtime was found and matches Constraint
	Satisfied bool `json:"satisfied"`
}

// Checker detects the managed runtime the tool depends on and can try to install it
type Checker interface {
	// Check returns an error only when the runtime could not be found or its version read
	Check(ctx context.Context, t *task.Task) (Status, error)
	// Remediate makes a best-effort attempt to install the runtime
	Remediate(ctx context.Context, t *task.Task) error
}
