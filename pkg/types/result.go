package types

import (
	"fmt"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
)

// Warning is a degraded outcome that did not stop the run
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	// Err is the degraded stage error behind the message, when there is one
	Err error `json:"-"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}

type InstallResult struct {
	// Context holds everything the stages resolved
	Context ResolutionContext `json:"context"`
	// Status indicates the outcome of the run
	Status InstallStatus `json:"status,omitempty"`
	// ExtractionSkipped is true when an existing extraction was reused
	ExtractionSkipped bool `json:"extraction_skipped,omitempty"`
	// IconGenerated is true when a native icon was produced from the extraction
	IconGenerated bool `json:"icon_generated,omitempty"`
	// DockRegistered is true when a new dock entry was written during this run
	DockRegistered bool `json:"dock_registered,omitempty"`
	// JavaVersion is the detected runtime version, empty when missing or skipped
	JavaVersion string `json:"java_version,omitempty"`
	// Warnings lists degraded outcomes
	Warnings []Warning `json:"warnings,omitempty"`
	// Duration is the total time taken
	Duration time.Duration `json:"duration,omitempty"`
	// Error contains the fatal error, if any
	Error error `json:"error,omitempty"`
}

// Warn records a degraded outcome
func (r *InstallResult) Warn(stage, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

func (r InstallResult) Pretty() api.Text {
	text := clicky.Text("").Add(r.Status.Pretty()).Append(": ").Add(r.Context.Pretty())

	if r.Error != nil {
		text = text.Append(" ").Append(r.Error.Error(), "text-red-500")
		return text
	}

	if r.ExtractionSkipped {
		text = text.Append(" (existing extraction)", "muted")
	}
	if r.JavaVersion != "" {
		text = text.Append(" java: ", "muted").Append(r.JavaVersion)
	}
	if r.Duration > 0 {
		text = text.Append(" in ", "muted").Printf("%s", r.Duration.Round(time.Millisecond))
	}
	for _, w := range r.Warnings {
		text = text.Append("\n").Add(icons.Warning).Append(" "+w.String(), "text-yellow-500")
	}
	return text
}
